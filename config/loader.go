package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "STARLIGHT_"

// Sources names the optional files Load reads. Missing files are skipped.
type Sources struct {
	JSON   string
	YAML   string
	DotEnv string
}

func DefaultSources() Sources {
	return Sources{
		JSON:   "config.json",
		YAML:   "config.yaml",
		DotEnv: ".env",
	}
}

// Load layers defaults, config.json, config.yaml, STARLIGHT_* environment
// variables and the .env file, in that order, then validates the result.
func Load(src Sources) (*Config, error) {
	k := koanf.New(".")

	if src.JSON != "" && fileExists(src.JSON) {
		if err := k.Load(file.Provider(src.JSON), json.Parser()); err != nil {
			return nil, fmt.Errorf("load %v: %w", src.JSON, err)
		}
	}

	if src.YAML != "" && fileExists(src.YAML) {
		if err := k.Load(file.Provider(src.YAML), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %v: %w", src.YAML, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if src.DotEnv != "" && fileExists(src.DotEnv) {
		if err := k.Load(file.Provider(src.DotEnv), dotenv.ParserEnv(envPrefix, ".", envKey)); err != nil {
			return nil, fmt.Errorf("load %v: %w", src.DotEnv, err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envKey maps STARLIGHT_LEDGER_PEBBLE_PATH to ledger.pebble.path.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(
		strings.TrimPrefix(s, envPrefix)), "_", ".", -1)
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
