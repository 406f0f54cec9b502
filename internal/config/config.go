// Package config loads .bslint.{toml,yaml,yml,json}: global analysis settings,
// include/exclude globs and per-rule settings.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"bslint/internal/diag"
	"bslint/internal/module"
	"bslint/internal/rule"
)

// FileNames are probed in this order in every directory.
var FileNames = []string{".bslint.toml", ".bslint.yaml", ".bslint.yml", ".bslint.json"}

var ErrUnknownFormat = errors.New("unknown configuration format")

// DefaultInclude matches BSL and OneScript sources.
var DefaultInclude = []string{"**/*.bsl", "**/*.os"}

type Config struct {
	// Path is the file the configuration came from; empty for defaults.
	Path string
	// Root is the directory include/exclude patterns are relative to.
	Root string

	Language      string
	Compatibility module.Version
	ModuleKind    module.Kind
	Include       []string
	Exclude       []string
	Diagnostics   map[string]rule.Settings
}

// Default is used when no configuration file exists.
func Default() *Config {
	return &Config{
		Language:    "ru",
		Include:     append([]string(nil), DefaultInclude...),
		Diagnostics: make(map[string]rule.Settings),
	}
}

// raw: общий вид для всех трёх форматов.
type raw struct {
	Language      string         `toml:"language" yaml:"language" json:"language"`
	Compatibility string         `toml:"compatibility" yaml:"compatibility" json:"compatibility"`
	ModuleKind    string         `toml:"module_kind" yaml:"module_kind" json:"module_kind"`
	Include       []string       `toml:"include" yaml:"include" json:"include"`
	Exclude       []string       `toml:"exclude" yaml:"exclude" json:"exclude"`
	Diagnostics   map[string]any `toml:"diagnostics" yaml:"diagnostics" json:"diagnostics"`
}

// FormatOf returns "toml", "yaml" or "json" by file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml", nil
	case ".yaml", ".yml":
		return "yaml", nil
	case ".json":
		return "json", nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// Parse decodes data in the given format ("toml", "yaml" or "json").
func Parse(data []byte, format string) (*Config, error) {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	var r raw
	switch format {
	case "toml":
		if _, err := toml.Decode(string(data), &r); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
	return r.build()
}

func (r *raw) build() (*Config, error) {
	cfg := Default()
	if s := strings.TrimSpace(r.Language); s != "" {
		lang := strings.ToLower(s)
		if lang != "ru" && lang != "en" {
			return nil, fmt.Errorf("language: expected \"ru\" or \"en\", got %q", s)
		}
		cfg.Language = lang
	}
	if r.Compatibility != "" {
		v, err := module.ParseVersion(r.Compatibility)
		if err != nil {
			return nil, fmt.Errorf("compatibility: %w", err)
		}
		cfg.Compatibility = v
	}
	if r.ModuleKind != "" {
		k, err := module.ParseKind(r.ModuleKind)
		if err != nil {
			return nil, fmt.Errorf("module_kind: %w", err)
		}
		cfg.ModuleKind = k
	}
	if len(r.Include) > 0 {
		cfg.Include = r.Include
	}
	cfg.Exclude = r.Exclude
	for _, p := range append(append([]string(nil), cfg.Include...), cfg.Exclude...) {
		if !validPattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}

	ids := make([]string, 0, len(r.Diagnostics))
	for id := range r.Diagnostics {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		s, err := settingsOf(r.Diagnostics[id])
		if err != nil {
			return nil, fmt.Errorf("diagnostics.%s: %w", id, err)
		}
		cfg.Diagnostics[id] = s
	}
	return cfg, nil
}

// settingsOf принимает `Правило = false` или таблицу с enabled, severity и параметрами.
func settingsOf(v any) (rule.Settings, error) {
	switch x := v.(type) {
	case bool:
		return rule.Settings{Enabled: &x}, nil
	case map[string]any:
		var s rule.Settings
		for k, val := range x {
			switch strings.ToLower(k) {
			case "enabled":
				b, ok := val.(bool)
				if !ok {
					return rule.Settings{}, fmt.Errorf("enabled: expected bool, got %T", val)
				}
				s.Enabled = &b
			case "severity":
				str, _ := val.(string)
				sev, ok := diag.ParseSeverity(str)
				if !ok {
					return rule.Settings{}, fmt.Errorf("severity: unknown value %v", val)
				}
				s.Severity = &sev
			default:
				if s.Params == nil {
					s.Params = make(map[string]any)
				}
				s.Params[k] = val
			}
		}
		return s, nil
	}
	return rule.Settings{}, fmt.Errorf("expected bool or table, got %T", v)
}

// FindFile walks up from startDir looking for one of FileNames.
func FindFile(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads one configuration file.
func Load(path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	return cfg, nil
}

// Discover finds and loads the configuration governing startDir. Without a
// file it returns Default rooted at startDir and false.
func Discover(startDir string) (*Config, bool, error) {
	path, ok, err := FindFile(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		cfg := Default()
		cfg.Root, _ = filepath.Abs(startDir)
		return cfg, false, nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// ModuleContext returns the module context for path; an unknown kind from the
// path falls back to ModuleKind.
func (c *Config) ModuleContext(path string) module.Context {
	kind := module.KindFromPath(path)
	if kind == module.KindUnknown {
		kind = c.ModuleKind
	}
	return module.Context{Kind: kind, Compatibility: c.Compatibility, Path: path}
}
