// Package config defines the data structures related to configuration and
// includes functions for loading and validating a solve configuration.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/Kiel1mcc/lease-ccr-loop/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for a lease-ccr solve.
type Configuration struct {
	Lease   LeaseConfig   `yaml:"lease" json:"lease" mapstructure:"lease"`
	Solver  SolverConfig  `yaml:"solver" json:"solver" mapstructure:"solver"`
	Logging LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty" mapstructure:"logging"`
	Output  OutputConfig  `yaml:"output,omitempty" json:"output,omitempty" mapstructure:"output"`
}

// LeaseConfig holds the financial inputs of the lease.
type LeaseConfig struct {
	TargetCash     float64 `yaml:"targetCash" json:"targetCash" mapstructure:"targetCash"`
	TaxableFees    float64 `yaml:"taxableFees" json:"taxableFees" mapstructure:"taxableFees"`
	NonTaxableFee  float64 `yaml:"nonTaxableFee" json:"nonTaxableFee" mapstructure:"nonTaxableFee"`
	TaxRate        float64 `yaml:"taxRate" json:"taxRate" mapstructure:"taxRate"`
	MoneyFactor    float64 `yaml:"moneyFactor" json:"moneyFactor" mapstructure:"moneyFactor"`
	TermMonths     int     `yaml:"termMonths" json:"termMonths" mapstructure:"termMonths"`
	CapCostBase    float64 `yaml:"capCostBase" json:"capCostBase" mapstructure:"capCostBase"`
	Residual       float64 `yaml:"residual" json:"residual" mapstructure:"residual"`
	LTRFeeConstant float64 `yaml:"ltrFeeConstant" json:"ltrFeeConstant" mapstructure:"ltrFeeConstant"`
}

// SolverConfig selects and tunes the search strategy.
type SolverConfig struct {
	Strategy      string   `yaml:"strategy,omitempty" json:"strategy,omitempty" mapstructure:"strategy"`
	Tolerance     float64  `yaml:"tolerance,omitempty" json:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int      `yaml:"maxIterations,omitempty" json:"maxIterations,omitempty" mapstructure:"maxIterations"`
	Step          float64  `yaml:"step,omitempty" json:"step,omitempty" mapstructure:"step"`
	Threshold     float64  `yaml:"threshold,omitempty" json:"threshold,omitempty" mapstructure:"threshold"`
	Gain          *float64 `yaml:"gain,omitempty" json:"gain,omitempty" mapstructure:"gain"`
	UpperBound    float64  `yaml:"upperBound,omitempty" json:"upperBound,omitempty" mapstructure:"upperBound"`
	Rounding      string   `yaml:"rounding,omitempty" json:"rounding,omitempty" mapstructure:"rounding"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" json:"level,omitempty" mapstructure:"level"`                // debug, info, warn, error
	Format     string `yaml:"format,omitempty" json:"format,omitempty" mapstructure:"format"`             // json, console
	OutputFile string `yaml:"outputFile,omitempty" json:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format  string `yaml:"format,omitempty" json:"format,omitempty" mapstructure:"format"` // pretty, csv, json
	History bool   `yaml:"history,omitempty" json:"history,omitempty" mapstructure:"history"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Configuration {
	conf, err := decode(newViper())
	if err != nil {
		// defaults are static and always decode
		panic(err)
	}
	return conf
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("lease.targetCash", 0.0)
	v.SetDefault("lease.taxableFees", 0.0)
	v.SetDefault("lease.nonTaxableFee", 0.0)
	v.SetDefault("lease.taxRate", 0.0)
	v.SetDefault("lease.moneyFactor", 0.0)
	v.SetDefault("lease.termMonths", 0)
	v.SetDefault("lease.capCostBase", 0.0)
	v.SetDefault("lease.residual", 0.0)
	v.SetDefault("lease.ltrFeeConstant", constants.DefaultLTRFeeConstant)

	v.SetDefault("solver.strategy", constants.DefaultStrategy)
	v.SetDefault("solver.tolerance", constants.DefaultTolerance)
	v.SetDefault("solver.maxIterations", constants.DefaultMaxIterations)
	v.SetDefault("solver.step", 0.0)
	v.SetDefault("solver.threshold", 0.0)
	v.SetDefault("solver.upperBound", 0.0)
	v.SetDefault("solver.rounding", constants.DefaultRounding)

	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.history", false)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}
