package config

import (
	"fmt"
	"os"
	"path/filepath"
	"stanchion/internal/logging"
	"stanchion/internal/repository"
	"stanchion/pkg/fileops"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// TUI Messages for async operations
type LoadConfigMsg struct {
	Config *Config
	Error  error
}

type SaveConfigMsg struct {
	Error error
}

// ReloadConfigMsg reports the result of re-reading the config from disk,
// typically after the settings wizard saved changes.
type ReloadConfigMsg struct {
	Config *Config
	Error  error
}

const APP_NAME = "stanchion" // application name used for config directory

// DefaultAPIVersion is the Azure OpenAI data-plane API version the setup
// wizard pre-fills. Deployments pin their own version via config or the
// AZURE_OPENAI_API_VERSION environment variable.
const DefaultAPIVersion = "2024-10-21"

// Placeholder values shipped in .env samples. Either one counts as
// unconfigured so a copied sample file never produces requests against a
// nonsense endpoint.
const (
	PlaceholderEndpoint = "your_endpoint_here"
	PlaceholderAPIKey   = "your_api_key_here"
)

// AzureOpenAI holds the connection settings for the Azure OpenAI deployment
// that performs assessments and template selection.
type AzureOpenAI struct {
	Endpoint   string `yaml:"endpoint"`          // https://<resource>.openai.azure.com
	Deployment string `yaml:"deployment"`        // deployment (model) name
	APIVersion string `yaml:"api_version"`       // data-plane API version
	APIKey     string `yaml:"api_key,omitempty"` // inline key; keyring storage is preferred
}

// EndpointConfigured reports whether a usable endpoint is present.
func (a AzureOpenAI) EndpointConfigured() bool {
	return !isPlaceholder(a.Endpoint, PlaceholderEndpoint)
}

// KeyConfigured reports whether a usable inline API key is present. Keys can
// also live in the OS keyring, so a false result does not mean assessment is
// unavailable.
func (a AzureOpenAI) KeyConfigured() bool {
	return !isPlaceholder(a.APIKey, PlaceholderAPIKey)
}

// IsConfigured reports whether the endpoint and deployment are usable. The
// key is checked separately because it may be resolved from the keyring.
func (a AzureOpenAI) IsConfigured() bool {
	return a.EndpointConfigured() && strings.TrimSpace(a.Deployment) != ""
}

func isPlaceholder(v, sample string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, sample)
}

// Config holds user configuration for stanchion.
type Config struct {
	// Azure is the Azure OpenAI deployment used for assessments.
	Azure AzureOpenAI `yaml:"azure_openai"`

	// LibraryDir is the directory holding the enterprise standards documents.
	// When empty or missing the embedded defaults are used.
	LibraryDir string `yaml:"library_dir"`

	// LibraryURL and LibraryBranch describe an optional git remote the
	// library is synced from. Empty URL means the library is purely local.
	LibraryURL    string `yaml:"library_url,omitempty"`
	LibraryBranch string `yaml:"library_branch,omitempty"`

	// TemplatesDir is an optional directory of additional .bicep boilerplates
	// layered over the embedded catalog.
	TemplatesDir string `yaml:"templates_dir,omitempty"`

	Version  string `yaml:"version"`   // Track config version
	InitTime int64  `yaml:"init_time"` // Unix timestamp of first setup
}

// HasRemoteLibrary reports whether the standards library is backed by a git
// remote and can be synced.
func (c *Config) HasRemoteLibrary() bool {
	return strings.TrimSpace(c.LibraryURL) != ""
}

// ConfigPath returns the standard config file path for the current platform.
// STANCHION_CONFIG_PATH overrides the location, which tests and containerized
// deployments rely on.
func ConfigPath() (string, error) {
	if override := os.Getenv("STANCHION_CONFIG_PATH"); override != "" {
		logging.Debug("Using config path override", "path", override)
		return override, nil
	}

	configDir := filepath.Join(xdg.ConfigHome, APP_NAME)
	configPath := filepath.Join(configDir, "config.yaml")

	logging.Debug("Determined config paths", "path", configPath)
	return configPath, nil
}

// LoadDotEnv loads a .env file from the working directory when one exists.
// Values already present in the environment win over file values. Missing
// files are not an error.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		logging.Debug("No .env file loaded", "error", err)
	}
}

// Load loads the config from the standard location and applies environment
// overrides. If no config exists, it returns an error indicating first run
// is needed.
func Load() (*Config, error) {
	configPath, exists := FindConfigFile()
	logging.Debug("Loading config from", "path", configPath)
	if !exists {
		return nil, fmt.Errorf("no configuration found, first-time setup required")
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFrom loads config from a specific path. Environment overrides are not
// applied, so callers see exactly what is on disk.
func LoadFrom(path string) (*Config, error) {
	logging.Info("Reading config file from: ", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	logging.Info("Decoding config file")
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overlays environment variables onto the config. The Azure
// variable names match what the hosted service ecosystem uses, so an MCP
// client can configure the server entirely through its env block.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("AZURE_OPENAI_ENDPOINT"); v != "" {
		c.Azure.Endpoint = v
	}
	if v := os.Getenv("AZURE_OPENAI_API_KEY"); v != "" {
		c.Azure.APIKey = v
	}
	if v := os.Getenv("AZURE_OPENAI_API_VERSION"); v != "" {
		c.Azure.APIVersion = v
	}
	if v := os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME"); v != "" {
		c.Azure.Deployment = v
	}
	if v := os.Getenv("STANCHION_LIBRARY_DIR"); v != "" {
		c.LibraryDir = v
	}
	if v := os.Getenv("STANCHION_TEMPLATES_DIR"); v != "" {
		c.TemplatesDir = v
	}
}

// FindConfigFile returns the path to an existing config file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary, err := ConfigPath()
	if err != nil {
		logging.Error("Failed to get config path", "error", err)
		return "", false
	}

	// Check primary location first
	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found at primary path", "path", primary)
		return primary, true
	}

	// Return primary path for new config
	return primary, false
}

// IsFirstRun checks if this is the first time the application is run
func IsFirstRun() bool {
	_, exists := FindConfigFile()
	return !exists
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	path := repository.GetDefaultLibraryDir()
	logging.Debug("Using default library directory", "path", path)

	return Config{
		Azure: AzureOpenAI{
			APIVersion: DefaultAPIVersion,
		},
		LibraryDir: path,
		Version:    "1.0",
		InitTime:   0, // Will be set during first save
	}
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	configPath, _ := FindConfigFile()
	return c.SaveTo(configPath)
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	// Set init time if this is the first save
	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file with restrictive permissions (600) for security
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// SetLibraryDir updates the library directory and saves the config
func (c *Config) SetLibraryDir(newDir string) error {
	c.LibraryDir = newDir
	return c.Save()
}

// LoadConfig loads configuration and returns a message for TUI
func LoadConfig() (*Config, error) {
	return Load()
}

// SaveConfig saves configuration for TUI operations
func SaveConfig(cfg *Config) error {
	return cfg.Save()
}

// ReloadConfig re-reads the configuration from disk and delivers the result
// as a message. The main TUI model runs this after the settings wizard saves.
func ReloadConfig() tea.Cmd {
	return func() tea.Msg {
		cfg, err := Load()
		if err != nil {
			return ReloadConfigMsg{Config: nil, Error: err}
		}
		return ReloadConfigMsg{Config: cfg, Error: nil}
	}
}

// UpdateLibraryDir updates the library directory, ensures it exists, and saves the config
func UpdateLibraryDir(cfg *Config, newLibraryDir string) error {
	if err := fileops.ValidateStoragePath(newLibraryDir); err != nil {
		return fmt.Errorf("invalid library directory: %w", err)
	}

	expanded := fileops.ExpandPath(strings.TrimSpace(newLibraryDir))
	if err := fileops.EnsureDirectoryExists(expanded); err != nil {
		return fmt.Errorf("failed to create library directory: %w", err)
	}
	cfg.LibraryDir = expanded

	// Save the config
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	logging.Info("Configuration updated successfully", "library_dir", cfg.LibraryDir)
	return nil
}

// CreateNewConfig initializes and persists a new configuration, creating the
// library directory when one is set.
func CreateNewConfig(cfg Config) error {
	if cfg.Version == "" {
		cfg.Version = DefaultConfig().Version
	}

	if cfg.LibraryDir != "" {
		if err := fileops.ValidateStoragePath(cfg.LibraryDir); err != nil {
			return fmt.Errorf("invalid library directory: %w", err)
		}
		cfg.LibraryDir = fileops.ExpandPath(strings.TrimSpace(cfg.LibraryDir))
		if err := fileops.EnsureDirectoryExists(cfg.LibraryDir); err != nil {
			return fmt.Errorf("failed to create library directory: %w", err)
		}
	}

	// Save the config to the standard location
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	logging.Info("Configuration created successfully", "library_dir", cfg.LibraryDir)
	return nil
}
