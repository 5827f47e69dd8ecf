package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ============================================================
// Configuration
// ============================================================

// Config holds the configuration of both services.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Sketcher SketcherConfig `yaml:"sketcher" mapstructure:"sketcher"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Presence PresenceConfig `yaml:"presence" mapstructure:"presence"`
	Redis    RedisConfig    `yaml:"redis" mapstructure:"redis"`
	Gateway  GatewayConfig  `yaml:"gateway" mapstructure:"gateway"`
}

type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	Environment  string        `yaml:"env" mapstructure:"env"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SketcherConfig holds the editor constants.
type SketcherConfig struct {
	GridSize         float64 `yaml:"grid_size" mapstructure:"grid_size"`
	JointEpsilon     float64 `yaml:"joint_epsilon" mapstructure:"joint_epsilon"`
	MinZoom          float64 `yaml:"min_zoom" mapstructure:"min_zoom"`
	MaxZoom          float64 `yaml:"max_zoom" mapstructure:"max_zoom"`
	ZoomBase         float64 `yaml:"zoom_base" mapstructure:"zoom_base"`
	ExportMultiplier float64 `yaml:"export_multiplier" mapstructure:"export_multiplier"`
	CanvasWidth      float64 `yaml:"canvas_width" mapstructure:"canvas_width"`
	CanvasHeight     float64 `yaml:"canvas_height" mapstructure:"canvas_height"`
	WallThickness    float64 `yaml:"wall_thickness" mapstructure:"wall_thickness"`
	WallHeight       float64 `yaml:"wall_height" mapstructure:"wall_height"`
	PlacementWidth   float64 `yaml:"placement_width" mapstructure:"placement_width"`
	PlacementHeight  float64 `yaml:"placement_height" mapstructure:"placement_height"`
	UndoLimit        int     `yaml:"undo_limit" mapstructure:"undo_limit"`
}

type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// PresenceConfig selects the presence transport. Driver is memory or redis.
type PresenceConfig struct {
	Driver        string  `yaml:"driver" mapstructure:"driver"`
	ChannelPrefix string  `yaml:"channel_prefix" mapstructure:"channel_prefix"`
	CursorRate    float64 `yaml:"cursor_rate" mapstructure:"cursor_rate"`
	CursorBurst   int     `yaml:"cursor_burst" mapstructure:"cursor_burst"`
	Buffer        int     `yaml:"buffer" mapstructure:"buffer"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

type GatewayConfig struct {
	Port        int    `yaml:"port" mapstructure:"port"`
	SketcherURL string `yaml:"sketcher_url" mapstructure:"sketcher_url"`
}

// Load reads configuration from an optional config.yaml and SKETCHER_* env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("SKETCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("sketcher.grid_size", 10.0)
	v.SetDefault("sketcher.joint_epsilon", 1.0)
	v.SetDefault("sketcher.min_zoom", 0.1)
	v.SetDefault("sketcher.max_zoom", 20.0)
	v.SetDefault("sketcher.zoom_base", 0.999)
	v.SetDefault("sketcher.export_multiplier", 2.0)
	v.SetDefault("sketcher.canvas_width", 1200.0)
	v.SetDefault("sketcher.canvas_height", 800.0)
	v.SetDefault("sketcher.wall_thickness", 10.0)
	v.SetDefault("sketcher.wall_height", 240.0)
	v.SetDefault("sketcher.placement_width", 80.0)
	v.SetDefault("sketcher.placement_height", 210.0)
	v.SetDefault("sketcher.undo_limit", 100)

	v.SetDefault("store.path", "data/db/sketcher.db")

	v.SetDefault("presence.driver", "memory")
	v.SetDefault("presence.channel_prefix", "sketcher:presence")
	v.SetDefault("presence.cursor_rate", 0.0)
	v.SetDefault("presence.cursor_burst", 1)
	v.SetDefault("presence.buffer", 64)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("gateway.port", 3000)
	v.SetDefault("gateway.sketcher_url", "http://localhost:3001")
}

// Validate rejects settings the editor cannot work with.
func (c *Config) Validate() error {
	s := c.Sketcher
	if s.GridSize <= 0 {
		return eris.New("config: sketcher.grid_size must be positive")
	}
	if s.JointEpsilon <= 0 || s.JointEpsilon >= s.GridSize {
		return eris.New("config: sketcher.joint_epsilon must be in (0, grid_size)")
	}
	if s.MinZoom <= 0 || s.MinZoom > s.MaxZoom {
		return eris.New("config: sketcher zoom range is invalid")
	}
	switch c.Presence.Driver {
	case "memory", "redis":
	default:
		return eris.Errorf("config: unknown presence driver %q", c.Presence.Driver)
	}
	return nil
}

// ============================================================
// Logger
// ============================================================

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
