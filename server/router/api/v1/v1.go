// Package v1 exposes the assistant over a small REST/SSE API.
package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/edusphere/edusphere/internal/profile"
	"github.com/edusphere/edusphere/plugin/assistant"
	"github.com/edusphere/edusphere/plugin/markdown"
	"github.com/edusphere/edusphere/server/auth"
	"github.com/edusphere/edusphere/store"
)

// APIV1Service wires the assistant, store and auth into HTTP handlers.
type APIV1Service struct {
	Profile         *profile.Profile
	Store           *store.Store
	Assistant       *assistant.Service
	AssistantConfig *assistant.Config
	Markdown        *markdown.Service
	Authenticator   *auth.Authenticator
}

// NewAPIV1Service creates the API service and its assistant.
func NewAPIV1Service(profile *profile.Profile, st *store.Store) *APIV1Service {
	assistantConfig := assistant.NewConfigFromProfile(profile)
	return &APIV1Service{
		Profile:         profile,
		Store:           st,
		Assistant:       assistant.NewService(assistantConfig, st),
		AssistantConfig: assistantConfig,
		Markdown:        markdown.NewService(),
		Authenticator:   auth.NewAuthenticator(profile.Secret),
	}
}

// Register mounts all v1 routes on the echo instance.
func (s *APIV1Service) Register(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.POST("/assistant/chat", s.handleChat)
	g.GET("/assistant/messages", s.listMessages)
	g.DELETE("/assistant/messages", s.resetConversation)
	g.GET("/assistant/voice", s.probeVoice)

	g.GET("/news", s.listNews)
	g.GET("/news/rss", s.newsFeed)
}
