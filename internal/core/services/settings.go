package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir          = "data_dir"
	keyMaxUploadMB      = "limits.max_upload_mb"
	keyMaxPages         = "limits.max_pages"
	keyMaxDPI           = "limits.max_dpi"
	keyManifestBackend  = "manifest.backend"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedModel       = "embedding.model"
	keyEmbedBatchSize   = "embedding.batch_size"
	keyAnswerProvider   = "answerer.provider"
	keyAnswerBaseURL    = "answerer.base_url"
	keyAnswerModel      = "answerer.model"
	keyAnswerAPIKey     = "answerer.api_key"
	keyPdftoppm         = "raster.pdftoppm"
	keyServerAddr       = "server.addr"
	keyServerRateRPS    = "server.rate_limit_rps"
	keyServerRateBurst  = "server.rate_limit_burst"
	keyWatchDir         = "watch.dir"
	envDataDir          = "PAGELENS_DATA_DIR"
	envOpenAIAPIKey     = "PAGELENS_OPENAI_API_KEY"
	redactedPlaceholder = "********"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
)

// settingKeys lists every configurable key and how its value is parsed.
var settingKeys = map[string]keyKind{
	keyDataDir:         kindString,
	keyMaxUploadMB:     kindInt,
	keyMaxPages:        kindInt,
	keyMaxDPI:          kindInt,
	keyManifestBackend: kindString,
	keyEmbedProvider:   kindString,
	keyEmbedBaseURL:    kindString,
	keyEmbedModel:      kindString,
	keyEmbedBatchSize:  kindInt,
	keyAnswerProvider:  kindString,
	keyAnswerBaseURL:   kindString,
	keyAnswerModel:     kindString,
	keyAnswerAPIKey:    kindString,
	keyPdftoppm:        kindString,
	keyServerAddr:      kindString,
	keyServerRateRPS:   kindFloat,
	keyServerRateBurst: kindInt,
	keyWatchDir:        kindString,
}

// SettingsService resolves domain.Settings from a ConfigStore, the
// environment and defaults, in that order of precedence: env, file, default.
type SettingsService struct {
	configStore    driven.ConfigStore
	defaultDataDir string
	getenv         func(string) string
}

// NewSettingsService creates a new settings service. defaultDataDir is used
// when neither the environment nor the config file sets data_dir.
func NewSettingsService(configStore driven.ConfigStore, defaultDataDir string) *SettingsService {
	return &SettingsService{
		configStore:    configStore,
		defaultDataDir: defaultDataDir,
		getenv:         os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	dataDir := s.getString(keyDataDir, s.defaultDataDir)
	if env := s.getenv(envDataDir); env != "" {
		dataDir = env
	}
	defaults := domain.DefaultSettings(dataDir)

	settings := defaults
	settings.Limits = domain.Limits{
		MaxUploadBytes: int64(s.getInt(keyMaxUploadMB, int(defaults.Limits.MaxUploadBytes>>20))) << 20,
		MaxPages:       s.getInt(keyMaxPages, defaults.Limits.MaxPages),
		MaxDPI:         s.getInt(keyMaxDPI, defaults.Limits.MaxDPI),
	}
	settings.Manifest = domain.ManifestBackend(s.getString(keyManifestBackend, string(defaults.Manifest)))
	if !settings.Manifest.IsValid() {
		return nil, fmt.Errorf("%w: manifest backend %q", domain.ErrUnsupportedType, settings.Manifest)
	}

	settings.Embedding = domain.EmbeddingSettings{
		Provider:  domain.AIProvider(s.getString(keyEmbedProvider, string(defaults.Embedding.Provider))),
		BaseURL:   s.getString(keyEmbedBaseURL, defaults.Embedding.BaseURL),
		Model:     s.getString(keyEmbedModel, defaults.Embedding.Model),
		BatchSize: s.getInt(keyEmbedBatchSize, defaults.Embedding.BatchSize),
	}

	provider := domain.AIProvider(s.getString(keyAnswerProvider, string(defaults.Answerer.Provider)))
	settings.Answerer = domain.AnswererSettings{
		Provider: provider,
		BaseURL:  s.getString(keyAnswerBaseURL, domain.DefaultAnswererURLs()[provider]),
		Model:    s.getString(keyAnswerModel, domain.DefaultAnswererModels()[provider]),
		APIKey:   s.configStore.GetString(keyAnswerAPIKey),
	}
	if env := s.getenv(envOpenAIAPIKey); env != "" && provider == domain.AIProviderOpenAI {
		settings.Answerer.APIKey = env
	}

	settings.Pdftoppm = s.getString(keyPdftoppm, defaults.Pdftoppm)
	settings.Server = domain.ServerSettings{
		Addr:           s.getString(keyServerAddr, defaults.Server.Addr),
		RateLimitRPS:   s.getFloat(keyServerRateRPS, defaults.Server.RateLimitRPS),
		RateLimitBurst: s.getInt(keyServerRateBurst, defaults.Server.RateLimitBurst),
	}
	settings.WatchDir = s.getString(keyWatchDir, filepath.Join(dataDir, "inbox"))

	return &settings, nil
}

// Set validates and stores a single key.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	switch key {
	case keyManifestBackend:
		if !domain.ManifestBackend(value).IsValid() {
			return fmt.Errorf("%w: manifest backend %q", domain.ErrUnsupportedType, value)
		}
	case keyEmbedProvider:
		if !domain.AIProvider(value).IsValidEmbedder() {
			return fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, value)
		}
	case keyAnswerProvider:
		if !domain.AIProvider(value).IsValidAnswerer() {
			return fmt.Errorf("%w: answerer provider %q", domain.ErrUnsupportedType, value)
		}
	}

	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, int64(n))
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%w: %s must be a positive number", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, f)
	default:
		return s.configStore.Set(key, value)
	}
}

// Keys returns every configurable key with its resolved value. Secrets are redacted.
func (s *SettingsService) Keys() (map[string]string, error) {
	st, err := s.Get()
	if err != nil {
		return nil, err
	}
	apiKey := ""
	if st.Answerer.APIKey != "" {
		apiKey = redactedPlaceholder
	}
	return map[string]string{
		keyDataDir:         st.DataDir,
		keyMaxUploadMB:     strconv.FormatInt(st.Limits.MaxUploadBytes>>20, 10),
		keyMaxPages:        strconv.Itoa(st.Limits.MaxPages),
		keyMaxDPI:          strconv.Itoa(st.Limits.MaxDPI),
		keyManifestBackend: string(st.Manifest),
		keyEmbedProvider:   string(st.Embedding.Provider),
		keyEmbedBaseURL:    st.Embedding.BaseURL,
		keyEmbedModel:      st.Embedding.Model,
		keyEmbedBatchSize:  strconv.Itoa(st.Embedding.BatchSize),
		keyAnswerProvider:  string(st.Answerer.Provider),
		keyAnswerBaseURL:   st.Answerer.BaseURL,
		keyAnswerModel:     st.Answerer.Model,
		keyAnswerAPIKey:    apiKey,
		keyPdftoppm:        st.Pdftoppm,
		keyServerAddr:      st.Server.Addr,
		keyServerRateRPS:   strconv.FormatFloat(st.Server.RateLimitRPS, 'g', -1, 64),
		keyServerRateBurst: strconv.Itoa(st.Server.RateLimitBurst),
		keyWatchDir:        st.WatchDir,
	}, nil
}

// SortedKeys returns the configurable keys in lexical order.
func SortedKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the current settings for consistency.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if !settings.Embedding.Provider.IsValidEmbedder() {
		return fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, settings.Embedding.Provider)
	}
	if !settings.Answerer.Provider.IsValidAnswerer() {
		return fmt.Errorf("%w: answerer provider %q", domain.ErrUnsupportedType, settings.Answerer.Provider)
	}
	if !settings.Answerer.IsConfigured() {
		return fmt.Errorf("answerer %q requires an API key", settings.Answerer.Provider.Description())
	}
	if settings.Limits.MaxDPI > domain.DPICap {
		return fmt.Errorf("%w: limits.max_dpi %d exceeds %d", domain.ErrInvalidInput, settings.Limits.MaxDPI, domain.DPICap)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings(s.defaultDataDir)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}
