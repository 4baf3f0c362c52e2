package store

import (
	"context"
	"database/sql"
	"fmt"

	"shopadmin/internal/model"
)

// CreateAnnouncement creates a new announcement.
func CreateAnnouncement(ctx context.Context, db *sql.DB, a model.Announcement) (*model.Announcement, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO announcements (title, header, content, color, visible) VALUES (?, ?, ?, ?, ?)`,
		a.Title, a.Header, a.Content, a.Color, a.Visible,
	)
	if err != nil {
		return nil, fmt.Errorf("creating announcement: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting announcement id: %w", err)
	}

	return GetAnnouncement(ctx, db, id)
}

// GetAnnouncement returns an announcement by ID, or nil if it does not exist.
func GetAnnouncement(ctx context.Context, db *sql.DB, id int64) (*model.Announcement, error) {
	a := &model.Announcement{}
	err := db.QueryRowContext(ctx,
		`SELECT id, title, header, content, color, visible FROM announcements WHERE id = ?`, id,
	).Scan(&a.ID, &a.Title, &a.Header, &a.Content, &a.Color, &a.Visible)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting announcement: %w", err)
	}
	return a, nil
}

// ListAnnouncements returns all announcements, or only the visible ones.
func ListAnnouncements(ctx context.Context, db *sql.DB, visibleOnly bool) ([]model.Announcement, error) {
	query := `SELECT id, title, header, content, color, visible FROM announcements ORDER BY id`
	if visibleOnly {
		query = `SELECT id, title, header, content, color, visible FROM announcements WHERE visible = 1 ORDER BY id`
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing announcements: %w", err)
	}
	defer rows.Close()

	var announcements []model.Announcement
	for rows.Next() {
		var a model.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Header, &a.Content, &a.Color, &a.Visible); err != nil {
			return nil, fmt.Errorf("scanning announcement: %w", err)
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}

// UpdateAnnouncement overwrites an announcement's fields.
func UpdateAnnouncement(ctx context.Context, db *sql.DB, id int64, a model.Announcement) error {
	_, err := db.ExecContext(ctx,
		`UPDATE announcements SET title = ?, header = ?, content = ?, color = ?, visible = ? WHERE id = ?`,
		a.Title, a.Header, a.Content, a.Color, a.Visible, id,
	)
	if err != nil {
		return fmt.Errorf("updating announcement: %w", err)
	}
	return nil
}

// DeleteAnnouncement removes an announcement.
func DeleteAnnouncement(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM announcements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting announcement: %w", err)
	}
	return nil
}
