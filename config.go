package grove

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// Config is the persisted tuning surface, loaded from TOML. Everything has a
// default; a missing file section keeps its defaults.
type Config struct {
	World     WorldSettings     `toml:"world"`
	Placement PlacementSettings `toml:"placement"`
	Logging   LoggingConfig     `toml:"logging"`
}

// WorldSettings tunes the runtime loop.
type WorldSettings struct {
	TickRate       time.Duration `toml:"tick_rate"`
	MaxHistory     int           `toml:"max_history"`
	StuckThreshold time.Duration `toml:"stuck_threshold"`
	Debug          bool          `toml:"debug"`
}

// PlacementSettings mirrors PlacementConfig in TOML form.
type PlacementSettings struct {
	GoldenAngle float64 `toml:"golden_angle"`
	RadiusScale float64 `toml:"radius_scale"`
	CenterX     float64 `toml:"center_x"`
	CenterY     float64 `toml:"center_y"`
	MinRadius   float64 `toml:"min_radius"`
	MaxIdeas    int     `toml:"max_ideas"`
}

// PlacementConfig converts the settings to the algorithm's config type.
func (s PlacementSettings) PlacementConfig() PlacementConfig {
	return PlacementConfig{
		GoldenAngle: s.GoldenAngle,
		RadiusScale: s.RadiusScale,
		CenterX:     s.CenterX,
		CenterY:     s.CenterY,
		MinRadius:   s.MinRadius,
		MaxIdeas:    s.MaxIdeas,
	}
}

// LoggingConfig selects the zap preset.
type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // "json" or "console"
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	p := DefaultPlacementConfig()
	return &Config{
		World: WorldSettings{
			TickRate:       time.Second / 60,
			MaxHistory:     DefaultMaxHistory,
			StuckThreshold: DefaultStuckThreshold,
		},
		Placement: PlacementSettings{
			GoldenAngle: p.GoldenAngle,
			RadiusScale: p.RadiusScale,
			CenterX:     p.CenterX,
			CenterY:     p.CenterY,
			MinRadius:   p.MinRadius,
			MaxIdeas:    p.MaxIdeas,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// LoadConfig reads a TOML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// NewLogger builds a zap logger from the logging config: the production
// preset for JSON output, the development preset for console output.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level
	return zapCfg.Build()
}
