package file

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// DefaultEnvBindings maps configuration keys to the environment variables that
// override them. The first non-empty variable wins.
var DefaultEnvBindings = map[string][]string{
	"embedding.provider":      {"DOCQA_EMBEDDING_PROVIDER"},
	"embedding.model":         {"EMBED_MODEL"},
	"embedding.base_url":      {"DOCQA_EMBEDDING_BASE_URL"},
	"llm.provider":            {"DOCQA_LLM_PROVIDER"},
	"llm.model":               {"LLM_MODEL"},
	"llm.base_url":            {"DOCQA_LLM_BASE_URL"},
	"openai.api_key":          {"OPENAI_API_KEY"},
	"anthropic.api_key":       {"ANTHROPIC_API_KEY"},
	"retrieval.top_k":         {"TOP_K"},
	"retrieval.chunk_size":    {"CHUNK_SIZE"},
	"retrieval.chunk_overlap": {"CHUNK_OVERLAP"},
	"storage.uploads_dir":     {"UPLOADS_DIR"},
	"storage.index_dir":       {"INDEX_DIR", "CHROMA_DIR"},
	"index.backend":           {"DOCQA_INDEX_BACKEND"},
	"index.collection":        {"DOCQA_COLLECTION"},
	"index.distance":          {"DOCQA_DISTANCE"},
	"index.postgres_dsn":      {"DOCQA_PG_DSN"},
}

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
// Values read from bound environment variables take precedence over the file
// but are never written back to it.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
	env      map[string][]string
	lookup   func(string) (string, bool)
}

// NewConfigStore creates a new TOML-based config store with DefaultEnvBindings.
// If configDir is empty, defaults to ~/.docqa/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	return NewConfigStoreWithEnv(configDir, DefaultEnvBindings)
}

// NewConfigStoreWithEnv creates a config store with custom environment bindings.
// A nil map disables the environment overlay.
func NewConfigStoreWithEnv(configDir string, env map[string][]string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".docqa")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		data:     make(map[string]any),
		env:      env,
		lookup:   os.LookupEnv,
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// envValue returns the overriding environment value for key, if any.
func (s *ConfigStore) envValue(key string) (string, bool) {
	for _, name := range s.env[key] {
		if v, ok := s.lookup(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	if v, ok := s.envValue(key); ok {
		return v, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// Source reports where the effective value of key comes from:
// "env", "file" or "" when unset.
func (s *ConfigStore) Source(key string) string {
	if _, ok := s.envValue(key); ok {
		return "env"
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.data[key]; ok {
		return "file"
	}
	return ""
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}

	str, ok := val.(string)
	if !ok {
		return ""
	}
	return str
}

// GetInt retrieves an integer configuration value.
// Strings are parsed, so environment overrides work for numeric keys.
func (s *ConfigStore) GetInt(key string) int {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}

	// TOML integers are parsed as int64
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	val, ok := s.Get(key)
	if !ok {
		return false
	}

	switch v := val.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

// Keys returns every key present in the file, sorted.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(nestMap(s.data))
	if err != nil {
		return err
	}

	// Write with restricted permissions, API keys may be stored here
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads configuration from the TOML file. A missing file is empty.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}

	if loaded == nil {
		loaded = make(map[string]any)
	}

	// Flatten nested tables into dot-notation keys for easier access
	s.data = flattenMap(loaded, "")
	return nil
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}

// nestMap is the inverse of flattenMap, so the file uses TOML tables.
// A key that is both a value and a table prefix keeps its dotted form.
func nestMap(flat map[string]any) map[string]any {
	root := make(map[string]any)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		parts := strings.Split(key, ".")
		node := root
		placed := true
		for _, part := range parts[:len(parts)-1] {
			child, exists := node[part]
			if !exists {
				next := make(map[string]any)
				node[part] = next
				node = next
				continue
			}
			next, ok := child.(map[string]any)
			if !ok {
				placed = false
				break
			}
			node = next
		}
		last := parts[len(parts)-1]
		if _, clash := node[last].(map[string]any); !placed || clash {
			root[key] = flat[key]
			continue
		}
		node[last] = flat[key]
	}
	return root
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
