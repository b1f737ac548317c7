// Package config provides Viper-based configuration loading for the game servers.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tomz197/orbitclicker/internal/economy"
)

// EnvPrefix prefixes every environment override, e.g. ORBIT_SSH_PORT.
const EnvPrefix = "ORBIT"

// SSHConfig holds the SSH listener settings.
type SSHConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// HostKeyPath is where the server's ed25519 key is stored, created on first run.
	HostKeyPath string `mapstructure:"host_key_path"`
}

// Addr returns the "host:port" listen address.
func (s SSHConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// WebConfig holds the HTTP/websocket listener settings.
type WebConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// SnapshotRate is how many snapshots per second are pushed to each socket.
	SnapshotRate int `mapstructure:"snapshot_rate"`
}

// Addr returns the "host:port" listen address.
func (w WebConfig) Addr() string { return fmt.Sprintf("%s:%d", w.Host, w.Port) }

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is a comma separated list of zap output paths.
	Output string `mapstructure:"output"`
}

// Outputs splits Output into zap output paths.
func (l LoggingConfig) Outputs() []string {
	var out []string
	for _, p := range strings.Split(l.Output, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = []string{"stderr"}
	}
	return out
}

// GameConfig holds the simulation tunables.
type GameConfig struct {
	TickRate      int     `mapstructure:"tick_rate"`
	WorldWidth    float64 `mapstructure:"world_width"`
	WorldHeight   float64 `mapstructure:"world_height"`
	PlanetRadius  float64 `mapstructure:"planet_radius"`
	BlockSize     float64 `mapstructure:"block_size"`
	OrbitRadius   float64 `mapstructure:"orbit_radius"`
	OrbitSpeed    float64 `mapstructure:"orbit_speed"`
	SatelliteSize float64 `mapstructure:"satellite_size"`

	StartingCurrency economy.Currency `mapstructure:"starting_currency"`
	BlockReward      int              `mapstructure:"block_reward"`
	// PlanetClearedGods is the gods reward for clearing a whole planet.
	PlanetClearedGods int `mapstructure:"planet_cleared_gods"`

	// Seed fixes the random source; 0 seeds from the clock.
	Seed int64 `mapstructure:"seed"`

	// Catalog paths; empty uses the embedded defaults.
	SkillsPath string `mapstructure:"skills_path"`
	StagesPath string `mapstructure:"stages_path"`
	ShipsPath  string `mapstructure:"ships_path"`
	Ship       string `mapstructure:"ship"`

	// MaxStep caps the simulated time consumed by one Step.
	MaxStep time.Duration `mapstructure:"max_step"`
}

// TickInterval is the wall time between simulation steps.
func (g GameConfig) TickInterval() time.Duration {
	if g.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(g.TickRate)
}

// Config is the top-level application configuration.
type Config struct {
	SSH     SSHConfig     `mapstructure:"ssh"`
	Web     WebConfig     `mapstructure:"web"`
	Logging LoggingConfig `mapstructure:"logging"`
	Game    GameConfig    `mapstructure:"game"`
}

// Default returns the built-in configuration without reading files or env.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: defaults do not unmarshal: %v", err))
	}
	return cfg
}

// Validate checks all configuration invariants and reports every violation.
func (c Config) Validate() error {
	return errors.Join(
		validateSSH(c.SSH),
		validateWeb(c.Web),
		validateLogging(c.Logging),
		validateGame(c.Game),
	)
}

func validPort(p int) bool { return p >= 1 && p <= 65535 }

func validateSSH(s SSHConfig) error {
	var errs []error
	if !validPort(s.Port) {
		errs = append(errs, fmt.Errorf("ssh.port must be 1-65535, got %d", s.Port))
	}
	if s.HostKeyPath == "" {
		errs = append(errs, errors.New("ssh.host_key_path must not be empty"))
	}
	return errors.Join(errs...)
}

func validateWeb(w WebConfig) error {
	var errs []error
	if !validPort(w.Port) {
		errs = append(errs, fmt.Errorf("web.port must be 1-65535, got %d", w.Port))
	}
	if w.SnapshotRate < 1 || w.SnapshotRate > 120 {
		errs = append(errs, fmt.Errorf("web.snapshot_rate must be 1-120, got %d", w.SnapshotRate))
	}
	return errors.Join(errs...)
}

func validateLogging(l LoggingConfig) error {
	var errs []error
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		errs = append(errs, fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		errs = append(errs, fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format))
	}
	return errors.Join(errs...)
}

func validateGame(g GameConfig) error {
	var errs []error
	if g.TickRate < 1 || g.TickRate > 240 {
		errs = append(errs, fmt.Errorf("game.tick_rate must be 1-240, got %d", g.TickRate))
	}
	if g.WorldWidth <= 0 || g.WorldHeight <= 0 {
		errs = append(errs, fmt.Errorf("game world must have positive size, got %gx%g", g.WorldWidth, g.WorldHeight))
	}
	if g.PlanetRadius <= 0 {
		errs = append(errs, fmt.Errorf("game.planet_radius must be > 0, got %g", g.PlanetRadius))
	}
	if g.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("game.block_size must be > 0, got %g", g.BlockSize))
	}
	if g.OrbitRadius <= g.PlanetRadius {
		errs = append(errs, fmt.Errorf("game.orbit_radius (%g) must exceed game.planet_radius (%g)", g.OrbitRadius, g.PlanetRadius))
	}
	if g.SatelliteSize <= 0 {
		errs = append(errs, fmt.Errorf("game.satellite_size must be > 0, got %g", g.SatelliteSize))
	}
	if g.StartingCurrency.Soul < 0 || g.StartingCurrency.Gods < 0 {
		errs = append(errs, errors.New("game.starting_currency must not be negative"))
	}
	if g.BlockReward < 0 {
		errs = append(errs, fmt.Errorf("game.block_reward must be >= 0, got %d", g.BlockReward))
	}
	if g.PlanetClearedGods < 0 {
		errs = append(errs, fmt.Errorf("game.planet_cleared_gods must be >= 0, got %d", g.PlanetClearedGods))
	}
	if g.Ship == "" {
		errs = append(errs, errors.New("game.ship must not be empty"))
	}
	if g.MaxStep <= 0 {
		errs = append(errs, fmt.Errorf("game.max_step must be > 0, got %s", g.MaxStep))
	}
	return errors.Join(errs...)
}

// Load reads configuration from the given YAML file, applies ORBIT_
// environment overrides, and validates the result. An empty path skips the
// file and uses defaults plus environment.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ssh.host", "0.0.0.0")
	v.SetDefault("ssh.port", 2222)
	v.SetDefault("ssh.host_key_path", ".ssh/id_ed25519")

	v.SetDefault("web.host", "0.0.0.0")
	v.SetDefault("web.port", 8080)
	v.SetDefault("web.snapshot_rate", 30)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("game.tick_rate", 60)
	v.SetDefault("game.world_width", 800.0)
	v.SetDefault("game.world_height", 600.0)
	v.SetDefault("game.planet_radius", 80.0)
	v.SetDefault("game.block_size", 8.0)
	v.SetDefault("game.orbit_radius", 200.0)
	v.SetDefault("game.orbit_speed", 0.015)
	v.SetDefault("game.satellite_size", 20.0)
	v.SetDefault("game.starting_currency.soul", 100)
	v.SetDefault("game.starting_currency.gods", 0)
	v.SetDefault("game.block_reward", 1)
	v.SetDefault("game.planet_cleared_gods", 1)
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.skills_path", "")
	v.SetDefault("game.stages_path", "")
	v.SetDefault("game.ships_path", "")
	v.SetDefault("game.ship", "default")
	v.SetDefault("game.max_step", "250ms")
}
