package domain

const unknownDescription = "Unknown"

// Hard ceiling on rendering resolution, regardless of configuration.
const DPICap = 180

// Limits bounds what a single upload may cost.
type Limits struct {
	// MaxUploadBytes is the largest accepted PDF.
	MaxUploadBytes int64 `json:"max_upload_bytes"`

	// MaxPages is the largest accepted page count.
	MaxPages int `json:"max_pages"`

	// MaxDPI is the configured rendering resolution.
	MaxDPI int `json:"max_dpi"`
}

// EffectiveDPI returns the resolution pages are rendered at: min(MaxDPI, DPICap).
func (l Limits) EffectiveDPI() int {
	if l.MaxDPI <= 0 || l.MaxDPI > DPICap {
		return DPICap
	}
	return l.MaxDPI
}

// DefaultLimits returns 50 MiB, 100 pages, 180 DPI.
func DefaultLimits() Limits {
	return Limits{
		MaxUploadBytes: 50 << 20,
		MaxPages:       100,
		MaxDPI:         DPICap,
	}
}

// ManifestBackend selects where manifests are persisted.
type ManifestBackend string

// Available manifest backends.
const (
	// ManifestBackendFile stores manifest.json next to each document.
	ManifestBackendFile ManifestBackend = "file"

	// ManifestBackendSQLite stores manifests in a catalog database.
	ManifestBackendSQLite ManifestBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b ManifestBackend) IsValid() bool {
	return b == ManifestBackendFile || b == ManifestBackendSQLite
}

// AIProvider identifies a model provider for embeddings or answering.
type AIProvider string

// Available AI providers.
const (
	// AIProviderCLIP is an OpenAI-compatible embedding server hosting a CLIP model.
	AIProviderCLIP AIProvider = "clip"

	// AIProviderOllama is a local Ollama instance with a vision model.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI chat completions API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderStub answers without a model.
	AIProviderStub AIProvider = "stub"
)

// IsValidEmbedder returns true if the provider can embed pages.
func (p AIProvider) IsValidEmbedder() bool {
	return p == AIProviderCLIP
}

// IsValidAnswerer returns true if the provider can answer questions.
func (p AIProvider) IsValidAnswerer() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderStub:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderCLIP:
		return "CLIP (OpenAI-compatible embedding server)"
	case AIProviderOllama:
		return "Ollama (local vision model)"
	case AIProviderOpenAI:
		return "OpenAI (cloud vision model)"
	case AIProviderStub:
		return "Stub (no model)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings configures the page embedder.
type EmbeddingSettings struct {
	Provider  AIProvider
	BaseURL   string
	Model     string
	BatchSize int
}

// AnswererSettings configures the answering model.
type AnswererSettings struct {
	Provider AIProvider
	BaseURL  string
	Model    string
	APIKey   string
}

// IsConfigured returns true if the provider is valid and has its credentials.
func (a AnswererSettings) IsConfigured() bool {
	if !a.Provider.IsValidAnswerer() {
		return false
	}
	return !a.Provider.RequiresAPIKey() || a.APIKey != ""
}

// ServerSettings configures the HTTP gateway.
type ServerSettings struct {
	Addr           string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Settings holds all application settings.
type Settings struct {
	DataDir   string
	Limits    Limits
	Manifest  ManifestBackend
	Embedding EmbeddingSettings
	Answerer  AnswererSettings
	Pdftoppm  string
	Server    ServerSettings
	WatchDir  string
}

// DefaultSettings returns settings rooted at dataDir.
func DefaultSettings(dataDir string) Settings {
	return Settings{
		DataDir:  dataDir,
		Limits:   DefaultLimits(),
		Manifest: ManifestBackendFile,
		Embedding: EmbeddingSettings{
			Provider:  AIProviderCLIP,
			BaseURL:   "http://localhost:7997",
			Model:     "openai/clip-vit-base-patch32",
			BatchSize: 16,
		},
		Answerer: AnswererSettings{
			Provider: AIProviderOllama,
			BaseURL:  DefaultAnswererURLs()[AIProviderOllama],
			Model:    DefaultAnswererModels()[AIProviderOllama],
		},
		Pdftoppm: "pdftoppm",
		Server: ServerSettings{
			Addr:           "0.0.0.0:3001",
			RateLimitRPS:   5,
			RateLimitBurst: 10,
		},
	}
}

// DefaultAnswererModels returns default models for each answering provider.
func DefaultAnswererModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "llava",
		AIProviderOpenAI: "gpt-4o-mini",
		AIProviderStub:   "stub",
	}
}

// DefaultAnswererURLs returns default endpoints for each answering provider.
func DefaultAnswererURLs() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "http://localhost:11434",
		AIProviderOpenAI: "https://api.openai.com/v1",
	}
}

// AllAnswererProviders returns providers that can answer questions.
func AllAnswererProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderStub}
}
