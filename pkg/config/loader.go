package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/logging"
)

// Load reads the configuration at path, creating it from the embedded
// defaults when it does not exist.
func Load(path string) (*Config, error) {
	logger := logging.GetLogger("config")

	created, err := ensureFile(path, defaultConfig)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to create default config at %s", path)
	}
	if created {
		logger.Info().Str("path", path).Msg("Wrote default configuration")
	}

	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load embedded defaults")
	}

	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config %s", path).
			WithDetail("path", path)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to decode config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigInvalid, "invalid config %s", path)
	}

	logger.Debug().
		Str("path", path).
		Strs("run", cfg.Run).
		Bool("restart", cfg.Restart).
		Uint64("minRestartIntervalSeconds", cfg.MinRestartIntervalSeconds).
		Str("destinations", cfg.Destinations).
		Msg("Configuration loaded")

	return cfg, nil
}

// Default returns the configuration described by the embedded defaults.
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		panic("config: embedded defaults do not parse: " + err.Error())
	}
	cfg, err := unmarshal(k)
	if err != nil {
		panic("config: embedded defaults do not decode: " + err.Error())
	}
	return cfg
}

// envKey maps SERVERWRAP_TOKENS__GITHUB to tokens.github.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ensureFile writes content to path unless something already exists there.
func ensureFile(path string, content []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, err
		}
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return false, err
	}
	return true, nil
}
