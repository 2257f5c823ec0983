package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where edusphere stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// Secret signs and verifies access tokens
	Secret string

	// Assistant configuration
	AssistantEnabled  bool   // EDUSPHERE_AI_ENABLED
	AssistantProvider string // EDUSPHERE_AI_PROVIDER (default: deepseek)
	AssistantAPIKey   string // EDUSPHERE_AI_API_KEY
	AssistantBaseURL  string // EDUSPHERE_AI_BASE_URL
	AssistantModel    string // EDUSPHERE_AI_MODEL (default: deepseek-chat)

	// VoiceEnabled reports whether the voice transcription collaborator is
	// reachable in this deployment. EDUSPHERE_VOICE_ENABLED
	VoiceEnabled bool
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAssistantEnabled returns true if external generation is enabled and an
// API key is configured. Without it the assistant still answers from local
// rules only.
func (p *Profile) IsAssistantEnabled() bool {
	return p.AssistantEnabled && p.AssistantAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from EDUSPHERE_* environment variables.
func (p *Profile) FromEnv() {
	p.AssistantEnabled = os.Getenv("EDUSPHERE_AI_ENABLED") == "true"
	p.AssistantProvider = getEnvOrDefault("EDUSPHERE_AI_PROVIDER", "deepseek")
	p.AssistantAPIKey = os.Getenv("EDUSPHERE_AI_API_KEY")
	p.AssistantBaseURL = os.Getenv("EDUSPHERE_AI_BASE_URL")
	p.AssistantModel = getEnvOrDefault("EDUSPHERE_AI_MODEL", "deepseek-chat")
	p.VoiceEnabled = os.Getenv("EDUSPHERE_VOICE_ENABLED") == "true"
	if secret := os.Getenv("EDUSPHERE_SECRET"); secret != "" {
		p.Secret = secret
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		p.Driver = "sqlite"
	}

	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("edusphere_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for postgres driver")
	}

	return nil
}
