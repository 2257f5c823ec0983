package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/edusphere/edusphere/store"
)

func (d *DB) ListCourses(ctx context.Context, find *store.FindCourse) ([]*store.CourseRecord, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, fmt.Sprintf("id = $%d", len(args)+1)), append(args, *find.ID)
	}
	if find.Category != nil {
		where, args = append(where, fmt.Sprintf("category = $%d", len(args)+1)), append(args, *find.Category)
	}

	rows, err := d.db.QueryContext(ctx,
		"SELECT id, title, description, category, level, rating FROM course WHERE "+strings.Join(where, " AND ")+" ORDER BY id",
		args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list courses")
	}
	defer rows.Close()

	var list []*store.CourseRecord
	for rows.Next() {
		var course store.CourseRecord
		if err := rows.Scan(&course.ID, &course.Title, &course.Description, &course.Category, &course.Level, &course.Rating); err != nil {
			return nil, errors.Wrap(err, "failed to scan course")
		}
		list = append(list, &course)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate courses")
	}
	return list, nil
}

func (d *DB) UpsertCourse(ctx context.Context, course *store.CourseRecord) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO course (id, title, description, category, level, rating)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			level = EXCLUDED.level,
			rating = EXCLUDED.rating
	`, course.ID, course.Title, course.Description, course.Category, course.Level, course.Rating)
	if err != nil {
		return errors.Wrap(err, "failed to upsert course")
	}
	return nil
}

func (d *DB) ListNews(ctx context.Context, find *store.FindNews) ([]*store.NewsItem, error) {
	query := "SELECT id, title, summary, link, created_ts FROM news ORDER BY created_ts DESC"
	args := []any{}
	if find.Limit != nil {
		query += " LIMIT $1"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list news")
	}
	defer rows.Close()

	var list []*store.NewsItem
	for rows.Next() {
		var item store.NewsItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Summary, &item.Link, &item.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan news item")
		}
		list = append(list, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate news")
	}
	return list, nil
}

func (d *DB) UpsertNews(ctx context.Context, item *store.NewsItem) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO news (id, title, summary, link, created_ts)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			link = EXCLUDED.link,
			created_ts = EXCLUDED.created_ts
	`, item.ID, item.Title, item.Summary, item.Link, item.CreatedTs)
	if err != nil {
		return errors.Wrap(err, "failed to upsert news item")
	}
	return nil
}
