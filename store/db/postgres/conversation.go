package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/edusphere/edusphere/store"
)

func (d *DB) GetConversation(ctx context.Context, key string) (*store.ConversationLog, error) {
	var (
		data      []byte
		updatedTs int64
	)
	err := d.db.QueryRowContext(ctx,
		"SELECT log, updated_ts FROM conversation WHERE key = $1", key,
	).Scan(&data, &updatedTs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load conversation")
	}

	log := &store.ConversationLog{Key: key, UpdatedTs: updatedTs}
	if err := json.Unmarshal(data, &log.Messages); err != nil {
		// Corrupt data is not fatal: return an empty log instead of failing.
		slog.Warn("failed to unmarshal conversation log", "key", key, "error", err)
		log.Messages = nil
	}
	return log, nil
}

func (d *DB) UpsertConversation(ctx context.Context, log *store.ConversationLog) error {
	data, err := json.Marshal(log.Messages)
	if err != nil {
		return errors.Wrap(err, "failed to marshal conversation log")
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO conversation (key, log, updated_ts)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			log = EXCLUDED.log,
			updated_ts = EXCLUDED.updated_ts
	`, log.Key, data, log.UpdatedTs)
	if err != nil {
		return errors.Wrap(err, "failed to upsert conversation")
	}
	return nil
}

func (d *DB) DeleteConversation(ctx context.Context, key string) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM conversation WHERE key = $1", key); err != nil {
		return errors.Wrap(err, "failed to delete conversation")
	}
	return nil
}
