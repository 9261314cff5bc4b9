package formconfig

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FormConfig is a named set of per-field pattern overrides representing one
// known form layout. Patterns may add field names beyond the defaults or
// override the built-in patterns for known ones.
type FormConfig struct {
	Name     string              `json:"-"`
	Patterns map[string][]string `json:"patterns"`
}

const configSchemaJSON = `{
	"type": "object",
	"properties": {
		"patterns": {
			"type": "object",
			"additionalProperties": {
				"type": "array",
				"items": {"type": "string"}
			}
		}
	},
	"additionalProperties": false
}`

var configSchema = jsonschema.MustCompileString("formconfig.schema.json", configSchemaJSON)

// Load reads and validates a single form config file.
func Load(path string) (FormConfig, error) {
	cfg := FormConfig{Name: filepath.Base(path)}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", cfg.Name, err)
	}
	if err := configSchema.Validate(doc); err != nil {
		return cfg, fmt.Errorf("validate config %s: %w", cfg.Name, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", cfg.Name, err)
	}
	return cfg, nil
}

// LoadDir loads every *.json file in dir, sorted by filename. The sort order
// is also the auto-selection tie-break order. A file that fails to load still
// yields a candidate with no overrides, so a broken config degrades to the
// default patterns instead of disappearing from selection.
func LoadDir(dir string, logger *slog.Logger) ([]FormConfig, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read forms dir: %w", err)
	}
	var configs []FormConfig
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			continue
		}
		cfg, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			logger.Warn("form config rejected, using defaults for it", "file", e.Name(), "error", err)
			cfg = FormConfig{Name: e.Name()}
		}
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Name < configs[j].Name })
	return configs, nil
}
