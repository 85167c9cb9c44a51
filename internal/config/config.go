package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/tuomass/bittranspose-go/pkg/bittranspose"
)

// EnvPrefix prefixes every environment override, e.g. BITTRANSPOSE_TRANSPOSE_STRANDS=4.
const EnvPrefix = "BITTRANSPOSE"

// Config holds the settings shared by the CLI and the HTTP service.
type Config struct {
	Transpose struct {
		Strands int  `mapstructure:"strands"`
		Framed  bool `mapstructure:"framed"`
	} `mapstructure:"transpose"`

	Server struct {
		Addr         string `mapstructure:"addr"`
		MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
	} `mapstructure:"server"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Output struct {
		Format string `mapstructure:"format"`
	} `mapstructure:"output"`
}

// Load reads the optional YAML file at path, applies environment overrides
// and fills in defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("transpose.strands", bittranspose.DefaultStrands)
	v.SetDefault("transpose.framed", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("output.format", "table")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no command could run with.
func (c *Config) Validate() error {
	if _, err := bittranspose.OutputLen(0, c.Transpose.Strands); err != nil {
		return errors.Wrap(err, "transpose.strands")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	switch strings.ToLower(c.Output.Format) {
	case "table", "json", "yaml":
	default:
		return errors.Errorf("output.format must be table, json or yaml, got %q", c.Output.Format)
	}
	return nil
}
