package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

const (
	configDirName  = ".strapisync"
	configFileName = "config.toml"
)

type fileConfig struct {
	DataDir        string               `toml:"data_dir"`
	Sources        []sourceConfig       `toml:"sources"        validate:"unique=Name,dive"`
	PostProcessors postProcessorsConfig `toml:"postprocessors"`
}

type sourceConfig struct {
	Name            string       `toml:"name"             validate:"required,excludesall=/"`
	APIURL          string       `toml:"api_url"          validate:"required,url"`
	AccessToken     string       `toml:"access_token"`
	Login           *loginConfig `toml:"login"`
	QueryLimit      int          `toml:"query_limit"      validate:"gte=0"`
	RateLimit       float64      `toml:"rate_limit"       validate:"gte=0"`
	MaxConcurrency  int          `toml:"max_concurrency"  validate:"gte=0"`
	CollectionTypes []typeConfig `toml:"collection_types" validate:"dive"`
	SingleTypes     []typeConfig `toml:"single_types"     validate:"dive"`
}

type loginConfig struct {
	Identifier string `toml:"identifier"`
	Password   string `toml:"password"`
}

type typeConfig struct {
	SingularName string         `toml:"singular_name" validate:"required"`
	QueryLimit   int            `toml:"query_limit"   validate:"gte=0"`
	QueryParams  map[string]any `toml:"query_params"`
}

type postProcessorsConfig struct {
	Names  []string                  `toml:"names"`
	Config map[string]map[string]any `toml:"config"`
}

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	validate *validator.Validate

	dataDir   string
	sources   []domain.Source
	postNames []string
	postCfgs  map[string]map[string]any
}

// NewConfigStore loads the configuration at path.
// If path is empty, defaults to ~/.strapisync/config.toml.
// A missing file yields an empty configuration.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, configDirName, configFileName)
	}

	s := &ConfigStore{
		filePath: path,
		validate: validator.New(),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads and validates the file. On error the previous
// configuration stays in place.
func (s *ConfigStore) Reload() error {
	var cfg fileConfig

	data, err := os.ReadFile(s.filePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, s.filePath, err)
		}
	}

	if err := s.validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, s.filePath, err)
	}

	dataDir, err := expandHome(cfg.DataDir)
	if err != nil {
		return err
	}
	if dataDir == "" {
		dataDir = filepath.Join(filepath.Dir(s.filePath), "data")
	}

	sources := make([]domain.Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		sources = append(sources, sc.toDomain())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataDir = dataDir
	s.sources = sources
	s.postNames = cfg.PostProcessors.Names
	s.postCfgs = cfg.PostProcessors.Config
	return nil
}

// Sources returns every configured source in file order.
func (s *ConfigStore) Sources() []domain.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Source, len(s.sources))
	copy(out, s.sources)
	return out
}

// Source returns the source named name.
func (s *ConfigStore) Source(name string) (*domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.sources {
		if s.sources[i].Name == name {
			src := s.sources[i]
			return &src, nil
		}
	}
	return nil, fmt.Errorf("source %q: %w", name, domain.ErrNotFound)
}

// DataDir returns the directory for persisted state.
func (s *ConfigStore) DataDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataDir
}

// PostProcessors returns the configured processor names and their options.
// Nil names means the defaults.
func (s *ConfigStore) PostProcessors() ([]string, map[string]map[string]any) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.postNames, s.postCfgs
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

func (c sourceConfig) toDomain() domain.Source {
	src := domain.Source{
		Name:            c.Name,
		APIURL:          c.APIURL,
		AccessToken:     os.ExpandEnv(c.AccessToken),
		QueryLimit:      c.QueryLimit,
		RateLimit:       c.RateLimit,
		MaxConcurrency:  c.MaxConcurrency,
		CollectionTypes: toTypeConfigs(c.CollectionTypes),
		SingleTypes:     toTypeConfigs(c.SingleTypes),
	}
	if c.Login != nil {
		src.Login = &domain.Login{
			Identifier: os.ExpandEnv(c.Login.Identifier),
			Password:   os.ExpandEnv(c.Login.Password),
		}
	}
	return src
}

func toTypeConfigs(in []typeConfig) []domain.TypeConfig {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.TypeConfig, 0, len(in))
	for _, tc := range in {
		out = append(out, domain.TypeConfig{
			SingularName: tc.SingularName,
			QueryLimit:   tc.QueryLimit,
			QueryParams:  tc.QueryParams,
		})
	}
	return out
}

// expandHome resolves a leading ~ to the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
