// Package config merges the ssreport command line, SSREPORT_* environment
// variables and an optional YAML file into one Config.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rusenback/ssreport/internal/model"
	"github.com/rusenback/ssreport/internal/storage"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "SSREPORT"

// ErrHelp is returned when -h/--help was requested
var ErrHelp = pflag.ErrHelp

// Config is the resolved configuration of one invocation
type Config struct {
	Input          string   `mapstructure:"input"`
	Output         string   `mapstructure:"output"`
	Struct         string   `mapstructure:"struct"`
	Sample         string   `mapstructure:"sample"`
	Header         bool     `mapstructure:"header"`
	FilterOutliers bool     `mapstructure:"filter-outliers"`
	Priorities     bool     `mapstructure:"priorities"`
	Processes      []string `mapstructure:"processes"`
	DB             string   `mapstructure:"db"`
	LoadRun        string   `mapstructure:"load-run"`
	Columns        []string `mapstructure:"column"`
	DeleteRun      string   `mapstructure:"delete-run"`
	ListRuns       bool     `mapstructure:"list-runs"`
	TUI            bool     `mapstructure:"tui"`
	LogLevel       string   `mapstructure:"log-level"`
	ConfigFile     string   `mapstructure:"config"`
}

// FlagSet declares the command line flags
func FlagSet(name string, out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringP("input", "i", "", "binary log file to read")
	fs.StringP("output", "o", "", "report file, format from extension .html, .csv or .txt (default <input>.html)")
	fs.StringP("struct", "S", model.KindProcessStats, "record kind to analyze: systemstats, processstats or threadstats")
	fs.StringP("sample", "s", "cpuload", "metric: cpuload, vsize, rss, idle or a raw field name")
	fs.BoolP("header", "H", false, "print the file header and record schemas, then exit")
	fs.Bool("filter-outliers", false, "drop samples whose acquisition took longer than mean+3σ")
	fs.Bool("priorities", false, "print the first-seen scheduling setup of every process and thread")
	fs.String("db", "", "sqlite database to store reports in (default ~/.ssreport/reports.db for stored runs)")
	fs.String("load-run", "", "load a stored report by run id instead of reading a log")
	fs.StringSlice("column", nil, "with --load-run, print the stored samples of this column (repeatable)")
	fs.Bool("list-runs", false, "list the reports stored in --db and exit")
	fs.String("delete-run", "", "delete a stored report by run id and exit")
	fs.Bool("tui", false, "browse the report interactively")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.String("config", "", "YAML configuration file")

	fs.SortFlags = false
	return fs
}

// Load parses args on top of the environment and the optional config file
func Load(fs *pflag.FlagSet, args []string) (Config, error) {
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}
	// BindEnv makes keys without a flag visible to Unmarshal
	if err := v.BindEnv("processes"); err != nil {
		return Config{}, err
	}
	if rest := fs.Args(); len(rest) > 0 {
		v.Set("processes", rest)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks flag combinations and fills in derived defaults
func (c *Config) Validate() error {
	switch c.Struct {
	case model.KindSystemStats, model.KindProcessStats, model.KindThreadStats:
	default:
		return fmt.Errorf("unknown struct %q: want systemstats, processstats or threadstats", c.Struct)
	}
	if c.Sample == "" {
		return errors.New("sample must not be empty")
	}

	if len(c.Columns) > 0 && c.LoadRun == "" {
		return errors.New("--column needs --load-run")
	}

	stored := c.ListRuns || c.LoadRun != "" || c.DeleteRun != ""
	if stored && c.DB == "" {
		path, err := storage.DefaultPath()
		if err != nil {
			return err
		}
		c.DB = path
	}
	if stored {
		return nil
	}

	if c.Input == "" {
		return errors.New("no input file given (-i)")
	}
	if c.Output == "" && !c.Header {
		c.Output = c.Input + ".html"
	}
	return nil
}
