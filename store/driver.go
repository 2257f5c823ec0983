package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	Migrate(ctx context.Context) error

	// Conversation log related methods. The log is persisted as a single
	// JSON document per conversation key.
	GetConversation(ctx context.Context, key string) (*ConversationLog, error)
	UpsertConversation(ctx context.Context, log *ConversationLog) error
	DeleteConversation(ctx context.Context, key string) error

	// Course catalog related methods.
	ListCourses(ctx context.Context, find *FindCourse) ([]*CourseRecord, error)
	UpsertCourse(ctx context.Context, course *CourseRecord) error

	// News related methods.
	ListNews(ctx context.Context, find *FindNews) ([]*NewsItem, error)
	UpsertNews(ctx context.Context, item *NewsItem) error
}
