package manifest

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// BackendURLEnv overrides [backend].url when set.
const BackendURLEnv = "BACKEND_URL"

// Load reads, decodes and validates the manifest at path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}

func Parse(b []byte) (Config, error) {
	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("manifest decode: %w", err)
	}
	if v := strings.TrimSpace(os.Getenv(BackendURLEnv)); v != "" {
		cfg.Backend.URL = v
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
