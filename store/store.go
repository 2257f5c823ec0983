package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/edusphere/edusphere/internal/profile"
	"github.com/edusphere/edusphere/plugin/assistant/timeout"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// GetConversation loads the conversation log for a key. Absent or corrupt
// data yields (nil, nil): the caller falls back to a fresh log rather than
// failing the turn.
func (s *Store) GetConversation(ctx context.Context, key string) (*ConversationLog, error) {
	log, err := s.driver.GetConversation(ctx, key)
	if err != nil {
		slog.Warn("failed to load conversation, starting empty",
			"key", key,
			"error", err)
		return nil, nil
	}
	return log, nil
}

// UpsertConversation persists the log, trimmed to the most recent
// HistoryWindow messages. The in-flight assistant message is the newest
// entry and always survives the trim.
func (s *Store) UpsertConversation(ctx context.Context, log *ConversationLog) error {
	if n := len(log.Messages); n > timeout.HistoryWindow {
		trimmed := make([]Message, timeout.HistoryWindow)
		copy(trimmed, log.Messages[n-timeout.HistoryWindow:])
		log.Messages = trimmed
	}
	log.UpdatedTs = time.Now().Unix()
	return s.driver.UpsertConversation(ctx, log)
}

func (s *Store) DeleteConversation(ctx context.Context, key string) error {
	return s.driver.DeleteConversation(ctx, key)
}

func (s *Store) ListCourses(ctx context.Context, find *FindCourse) ([]*CourseRecord, error) {
	return s.driver.ListCourses(ctx, find)
}

func (s *Store) UpsertCourse(ctx context.Context, course *CourseRecord) error {
	return s.driver.UpsertCourse(ctx, course)
}

func (s *Store) ListNews(ctx context.Context, find *FindNews) ([]*NewsItem, error) {
	return s.driver.ListNews(ctx, find)
}

func (s *Store) UpsertNews(ctx context.Context, item *NewsItem) error {
	return s.driver.UpsertNews(ctx, item)
}
