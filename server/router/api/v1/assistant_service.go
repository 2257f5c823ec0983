package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/edusphere/edusphere/plugin/assistant"
	"github.com/edusphere/edusphere/plugin/assistant/compose"
	apierrors "github.com/edusphere/edusphere/server/internal/errors"
	"github.com/edusphere/edusphere/server/internal/observability"
)

type chatRequest struct {
	Content string `json:"content"`
}

type messageResponse struct {
	UID         string          `json:"uid"`
	Role        string          `json:"role"`
	Content     string          `json:"content"`
	ContentHTML string          `json:"contentHtml,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	CreatedTs   int64           `json:"createdTs"`
}

type voiceResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

// handleChat runs one assistant turn and streams the reveal as
// server-sent events: `typing`, repeated `message` prefixes, then `done`
// with the payload and navigation request.
func (s *APIV1Service) handleChat(c echo.Context) error {
	key := s.Authenticator.ConversationKey(c)

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request")
	}
	if strings.TrimSpace(req.Content) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content is required")
	}

	logger := observability.NewRequestContext(slog.Default(), key)
	logger.Info("assistant chat started",
		slog.Int(observability.LogFieldMessageLen, len(req.Content)))

	resp := c.Response()

	// The SSE status line is committed lazily, on the first event: a turn
	// rejected before any event must still be able to answer with an
	// error status.
	var writeMu sync.Mutex
	headerWritten := false
	emit := func(ev assistant.Event) {
		data, err := json.Marshal(ev)
		if err != nil {
			logger.Error("failed to marshal event", err)
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		if !headerWritten {
			resp.Header().Set(echo.HeaderContentType, "text/event-stream")
			resp.Header().Set("Cache-Control", "no-cache")
			resp.Header().Set("Connection", "keep-alive")
			resp.WriteHeader(http.StatusOK)
			headerWritten = true
		}
		fmt.Fprintf(resp, "data: %s\n\n", data)
		resp.Flush()
	}

	if err := s.Assistant.HandleTurn(c.Request().Context(), key, req.Content, emit); err != nil {
		// Turn rejections are reported before any event was written, so
		// the response is still uncommitted here.
		switch err {
		case assistant.ErrEmptyUtterance:
			return echo.NewHTTPError(http.StatusBadRequest,
				apierrors.New(apierrors.ErrCodeInvalidArgument, "content is required").Error())
		case assistant.ErrRateLimited:
			return echo.NewHTTPError(http.StatusTooManyRequests,
				apierrors.New(apierrors.ErrCodeRateLimitExceeded, "too many turns").Error())
		default:
			logger.Error("assistant turn failed", err)
			return echo.NewHTTPError(http.StatusInternalServerError,
				apierrors.Wrap(apierrors.ErrCodeServiceUnavailable, "turn failed", err).Error())
		}
	}

	logger.Info("assistant chat completed",
		slog.Int64(observability.LogFieldDuration, logger.DurationMs()))
	return nil
}

// listMessages returns the persisted conversation window, with assistant
// answers additionally rendered to HTML.
func (s *APIV1Service) listMessages(c echo.Context) error {
	key := s.Authenticator.ConversationKey(c)

	messages, err := s.Assistant.Messages(c.Request().Context(), key)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		out := messageResponse{
			UID:       m.UID,
			Role:      string(m.Role),
			Content:   m.Content,
			Payload:   m.Payload,
			CreatedTs: m.CreatedTs,
		}
		if m.IsAssistant() {
			if html, err := s.Markdown.RenderHTML(m.Content); err == nil {
				out.ContentHTML = html
			}
		}
		resp = append(resp, out)
	}
	return c.JSON(http.StatusOK, resp)
}

// resetConversation deletes the log; the next load starts from the
// greeting seed.
func (s *APIV1Service) resetConversation(c echo.Context) error {
	key := s.Authenticator.ConversationKey(c)
	if err := s.Assistant.Reset(c.Request().Context(), key); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// probeVoice reports whether the voice-input collaborator can be used in
// this deployment. When it cannot, the response carries the explanatory
// assistant message instead of failing silently.
func (s *APIV1Service) probeVoice(c echo.Context) error {
	if s.AssistantConfig.VoiceEnabled {
		return c.JSON(http.StatusOK, voiceResponse{Available: true})
	}
	return c.JSON(http.StatusOK, voiceResponse{
		Available: false,
		Message:   compose.VoiceUnavailableText(),
	})
}
