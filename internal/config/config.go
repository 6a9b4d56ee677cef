package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var schemaSource string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

type Config struct {
	Project struct {
		Roots   []string `json:"roots"`
		Workers int      `json:"workers"`
	} `json:"project"`
	Storage struct {
		Path string `json:"path"`
	} `json:"storage"`
	Completion struct {
		TimeoutMillis  int      `json:"code_assist_timeout_ms"`
		ExcludedTypes  []string `json:"excluded_types"`
		ParseCacheSize int      `json:"parse_cache_size"`
	} `json:"completion"`
	Log struct {
		Level  string `json:"level"`
		Format string `json:"format"`
	} `json:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Project.Roots = []string{"."}
	cfg.Storage.Path = "smartassist.db"
	cfg.Completion.TimeoutMillis = 5000
	cfg.Completion.ParseCacheSize = 64
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return &cfg
}

// Timeout is the host's code assist timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Completion.TimeoutMillis) * time.Millisecond
}

// LoadConfig reads path (.yaml, .yml or .toml) over the defaults. A missing
// file yields the defaults. Environment variables override file values and
// the result is validated against the embedded schema.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Decode the config file
	doc := map[string]any{}
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if doc, err = decode(path, file); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if db := os.Getenv("SMARTASSIST_DB"); db != "" {
		set(doc, db, "storage", "path")
	}
	if level := os.Getenv("SMARTASSIST_LOG_LEVEL"); level != "" {
		set(doc, strings.ToLower(level), "log", "level")
	}
	if timeout := os.Getenv("CODE_ASSIST_TIMEOUT"); timeout != "" {
		ms, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid CODE_ASSIST_TIMEOUT %q: %w", timeout, err)
		}
		set(doc, ms, "completion", "code_assist_timeout_ms")
	}

	// 4. Validate and apply over the defaults
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config for schema validation: %w", err)
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte) (map[string]any, error) {
	doc := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return doc, nil
}

func validate(raw []byte) error {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if schemaErr = compiler.AddResource("config.schema.json", strings.NewReader(schemaSource)); schemaErr != nil {
			return
		}
		schema, schemaErr = compiler.Compile("config.schema.json")
	})
	if schemaErr != nil {
		return fmt.Errorf("failed to compile config schema: %w", schemaErr)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("failed to normalize config for schema validation: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("config schema validation failed: %w", err)
	}
	return nil
}

// set stores value at the nested key path, creating sections as needed.
func set(doc map[string]any, value any, keys ...string) {
	for _, k := range keys[:len(keys)-1] {
		next, ok := doc[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			doc[k] = next
		}
		doc = next
	}
	doc[keys[len(keys)-1]] = value
}
