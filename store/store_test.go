package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDriver is an in-memory Driver for store tests.
type fakeDriver struct {
	logs    map[string]*ConversationLog
	failGet bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{logs: make(map[string]*ConversationLog)}
}

func (d *fakeDriver) GetDB() *sql.DB                { return nil }
func (d *fakeDriver) Close() error                  { return nil }
func (d *fakeDriver) Migrate(context.Context) error { return nil }

func (d *fakeDriver) GetConversation(_ context.Context, key string) (*ConversationLog, error) {
	if d.failGet {
		return nil, errors.New("disk on fire")
	}
	return d.logs[key], nil
}

func (d *fakeDriver) UpsertConversation(_ context.Context, log *ConversationLog) error {
	d.logs[log.Key] = log
	return nil
}

func (d *fakeDriver) DeleteConversation(_ context.Context, key string) error {
	delete(d.logs, key)
	return nil
}

func (d *fakeDriver) ListCourses(context.Context, *FindCourse) ([]*CourseRecord, error) {
	return nil, nil
}
func (d *fakeDriver) UpsertCourse(context.Context, *CourseRecord) error { return nil }
func (d *fakeDriver) ListNews(context.Context, *FindNews) ([]*NewsItem, error) {
	return nil, nil
}
func (d *fakeDriver) UpsertNews(context.Context, *NewsItem) error { return nil }

var _ Driver = (*fakeDriver)(nil)

func TestStore_UpsertTrimsToWindow(t *testing.T) {
	driver := newFakeDriver()
	st := New(driver, nil)
	ctx := context.Background()

	log := &ConversationLog{Key: "conversation:1"}
	for i := 0; i < 75; i++ {
		log.Messages = append(log.Messages, Message{
			UID:     fmt.Sprintf("m%d", i),
			Role:    MessageRoleUser,
			Content: fmt.Sprintf("message %d", i),
		})
	}

	require.NoError(t, st.UpsertConversation(ctx, log))

	stored := driver.logs["conversation:1"]
	require.NotNil(t, stored)
	require.Len(t, stored.Messages, 50)
	// The newest messages survive; the in-flight one is the newest.
	assert.Equal(t, "m25", stored.Messages[0].UID)
	assert.Equal(t, "m74", stored.Messages[49].UID)
	assert.NotZero(t, stored.UpdatedTs)
}

func TestStore_UpsertKeepsShortLogIntact(t *testing.T) {
	driver := newFakeDriver()
	st := New(driver, nil)

	log := &ConversationLog{Key: "conversation:1", Messages: []Message{
		{UID: "a", Role: MessageRoleAssistant, Content: "Bonjour"},
		{UID: "b", Role: MessageRoleUser, Content: "salut"},
	}}
	require.NoError(t, st.UpsertConversation(context.Background(), log))

	stored := driver.logs["conversation:1"]
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, "a", stored.Messages[0].UID)
}

// A broken driver read degrades to an empty conversation instead of
// failing the turn.
func TestStore_GetConversationToleratesDriverFailure(t *testing.T) {
	driver := newFakeDriver()
	driver.failGet = true
	st := New(driver, nil)

	log, err := st.GetConversation(context.Background(), "conversation:1")
	require.NoError(t, err)
	assert.Nil(t, log)
}

func TestStore_GetConversationMissingKey(t *testing.T) {
	st := New(newFakeDriver(), nil)

	log, err := st.GetConversation(context.Background(), "conversation:absent")
	require.NoError(t, err)
	assert.Nil(t, log)
}

func TestStore_DeleteConversation(t *testing.T) {
	driver := newFakeDriver()
	st := New(driver, nil)
	ctx := context.Background()

	require.NoError(t, st.UpsertConversation(ctx, &ConversationLog{Key: "conversation:1", Messages: []Message{{UID: "a"}}}))
	require.NoError(t, st.DeleteConversation(ctx, "conversation:1"))

	log, err := st.GetConversation(ctx, "conversation:1")
	require.NoError(t, err)
	assert.Nil(t, log)
}
