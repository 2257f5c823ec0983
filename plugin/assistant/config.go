package assistant

import (
	"github.com/edusphere/edusphere/internal/profile"
	"github.com/edusphere/edusphere/plugin/assistant/gateway"
	"github.com/edusphere/edusphere/plugin/assistant/stream"
)

// Config represents assistant configuration.
type Config struct {
	// GatewayEnabled turns on delegation of unknown questions to the
	// external generation service. The assistant works without it.
	GatewayEnabled bool
	Gateway        gateway.Config

	// MaxConcurrentGenerations bounds simultaneous external calls.
	MaxConcurrentGenerations int64

	Stream stream.Config

	// VoiceEnabled reports whether the voice-input collaborator is
	// available in this deployment.
	VoiceEnabled bool
}

// NewConfigFromProfile creates assistant config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	return &Config{
		GatewayEnabled: p.IsAssistantEnabled(),
		Gateway: gateway.Config{
			Provider: p.AssistantProvider,
			APIKey:   p.AssistantAPIKey,
			BaseURL:  p.AssistantBaseURL,
			Model:    p.AssistantModel,
		},
		MaxConcurrentGenerations: 4,
		VoiceEnabled:             p.VoiceEnabled,
	}
}
