// Package config loads the single Config struct enumerated in spec §6
// with github.com/spf13/viper, the way samirrijal-bilbopass's
// internal/pkg/config loads its service configuration: defaults set with
// SetDefault, overridden by an optional config file and FASTTRIPS_-
// prefixed environment variables, decoded into a typed struct. Per §9's
// "configuration surface" design note, unknown keys are rejected at load
// rather than silently ignored.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// PathfindingType selects the labeling algorithm, or bypasses the core
// entirely.
type PathfindingType string

const (
	Deterministic PathfindingType = "deterministic"
	Stochastic    PathfindingType = "stochastic"
	FromFile      PathfindingType = "file"
)

// Config is every option enumerated in spec §6 that affects the core.
type Config struct {
	PathfindingType PathfindingType `mapstructure:"pathfinding_type"`

	TimeWindowMinutes float64 `mapstructure:"time_window"`

	StochasticDispersion          float64 `mapstructure:"stochastic_dispersion"`
	StochasticPathsetSize         int     `mapstructure:"stochastic_pathset_size"`
	StochasticMaxStopProcessCount int     `mapstructure:"stochastic_max_stop_process_count"`

	MinTransferPenalty float64 `mapstructure:"min_transfer_penalty"`

	OverlapVariable       string  `mapstructure:"overlap_variable"`
	OverlapScaleParameter float64 `mapstructure:"overlap_scale_parameter"`
	OverlapSplitTransit   bool    `mapstructure:"overlap_split_transit"`

	MaxNumPaths        int     `mapstructure:"max_num_paths"`
	MinPathProbability float64 `mapstructure:"min_path_probability"`

	TransferFareIgnorePathfinding bool `mapstructure:"transfer_fare_ignore_pathfinding"`
	TransferFareIgnorePathenum    bool `mapstructure:"transfer_fare_ignore_pathenum"`

	UtilsConversionFactor float64 `mapstructure:"utils_conversion_factor"`
	FareZoneSymmetry      bool    `mapstructure:"fare_zone_symmetry"`

	BumpBufferMinutes float64 `mapstructure:"bump_buffer"`

	MaxHyperpathAssignAttempts int `mapstructure:"max_hyperpath_assign_attempts"`
}

// TimeWindowSeconds returns the candidate-trip query window in seconds.
func (c Config) TimeWindowSeconds() int32 {
	return int32(c.TimeWindowMinutes * 60)
}

// BumpBufferSeconds returns the bump buffer as seconds.
func (c Config) BumpBufferSeconds() int32 {
	return int32(c.BumpBufferMinutes * 60)
}

// Validate checks the cross-field invariants §6/§9 impose: theta must be
// positive, the conversion factor must be positive (a non-positive factor
// would collapse or flip every utility).
func (c Config) Validate() error {
	if c.PathfindingType != Deterministic && c.PathfindingType != Stochastic && c.PathfindingType != FromFile {
		return fmt.Errorf("config: unknown pathfinding_type %q", c.PathfindingType)
	}
	if c.PathfindingType == Stochastic && c.StochasticDispersion <= 0 {
		return fmt.Errorf("config: stochastic_dispersion must be > 0, got %v", c.StochasticDispersion)
	}
	if c.UtilsConversionFactor <= 0 {
		return fmt.Errorf("config: utils_conversion_factor must be > 0, got %v", c.UtilsConversionFactor)
	}
	switch c.OverlapVariable {
	case "count", "distance", "time":
	default:
		return fmt.Errorf("config: unknown overlap_variable %q", c.OverlapVariable)
	}
	return nil
}

func defaults(v *viper.Viper) {
	v.SetDefault("pathfinding_type", string(Stochastic))
	v.SetDefault("time_window", 30.0)
	v.SetDefault("stochastic_dispersion", 1.0)
	v.SetDefault("stochastic_pathset_size", 100)
	v.SetDefault("stochastic_max_stop_process_count", -1)
	v.SetDefault("min_transfer_penalty", 0.0)
	v.SetDefault("overlap_variable", "count")
	v.SetDefault("overlap_scale_parameter", 1.0)
	v.SetDefault("overlap_split_transit", false)
	v.SetDefault("max_num_paths", -1)
	v.SetDefault("min_path_probability", 0.0)
	v.SetDefault("transfer_fare_ignore_pathfinding", false)
	v.SetDefault("transfer_fare_ignore_pathenum", false)
	v.SetDefault("utils_conversion_factor", 1.0)
	v.SetDefault("fare_zone_symmetry", false)
	v.SetDefault("bump_buffer", 5.0)
	v.SetDefault("max_hyperpath_assign_attempts", 1000)
}

// recognizedKeys lists every key defaults() sets; Load rejects any key
// present in the config file that isn't in this set, per §9's
// "unknown options rejected at load, not silently ignored."
// FASTTRIPS_-prefixed environment variables that match no option are not
// checked, since viper does not list them among its keys.
func recognizedKeys() map[string]bool {
	v := viper.New()
	defaults(v)
	keys := make(map[string]bool)
	for _, k := range v.AllKeys() {
		keys[k] = true
	}
	return keys
}

// Load reads configuration from an optional file path (may be empty, in
// which case only defaults and environment variables apply) and
// FASTTRIPS_-prefixed environment variables, then validates it.
func Load(configFile string) (Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("FASTTRIPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	}

	recognized := recognizedKeys()
	for _, k := range v.AllKeys() {
		if !recognized[k] {
			return Config{}, fmt.Errorf("config: unrecognized option %q", k)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the Config produced by defaults alone, useful for tests
// and the demo server fixture.
func Default() Config {
	cfg, err := Load("")
	if err != nil {
		// defaults() always produces a valid Config; a failure here is a
		// programming error in the default values themselves.
		panic(err)
	}
	return cfg
}
