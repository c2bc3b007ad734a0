package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Link struct {
	ID              int64      `json:"id"`
	ShortCode       string     `json:"short_code"`
	ShortURL        string     `json:"short_url"`
	Destination     string     `json:"destination"`
	Title           string     `json:"title"`
	Notes           string     `json:"notes"`
	Owner           string     `json:"owner"`
	IsActive        bool       `json:"is_active"`
	TrackingEnabled bool       `json:"tracking_enabled"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (l *Link) FillShortURL(baseURL string) {
	l.ShortURL = baseURL + "/" + l.ShortCode
}

const linkColumns = `id, short_code, destination, title, notes, owner, is_active, tracking_enabled, expires_at, created_at, updated_at`

func CreateLink(db *sql.DB, l *Link) error {
	active := 0
	if l.IsActive {
		active = 1
	}
	tracking := 0
	if l.TrackingEnabled {
		tracking = 1
	}
	res, err := db.Exec(
		`INSERT INTO links (short_code, destination, title, notes, owner, is_active, tracking_enabled, expires_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ShortCode, l.Destination, l.Title, l.Notes, l.Owner, active, tracking, l.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert link: %w", err)
	}
	id, _ := res.LastInsertId()
	l.ID = id

	// Re-read to get timestamps
	return GetLinkByID(db, l)
}

func GetLinkByID(db *sql.DB, l *Link) error {
	row := db.QueryRow(`SELECT `+linkColumns+` FROM links WHERE id = ?`, l.ID)
	return scanLink(row, l)
}

func GetLinkByShortCode(ctx context.Context, db *sql.DB, code string) (*Link, error) {
	l := &Link{}
	row := db.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links WHERE short_code = ?`, code)
	if err := scanLink(row, l); err != nil {
		return nil, err
	}
	return l, nil
}

func ListLinks(db *sql.DB, limit, offset int, search string) ([]Link, int, error) {
	var args []any
	where := "1=1"
	if search != "" {
		where = "(short_code LIKE ? OR destination LIKE ? OR title LIKE ?)"
		s := "%" + search + "%"
		args = append(args, s, s, s)
	}

	var total int
	if err := db.QueryRow("SELECT COUNT(*) FROM links WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count links: %w", err)
	}

	query := "SELECT " + linkColumns + " FROM links WHERE " + where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var l Link
		if err := scanLinkRow(rows, &l); err != nil {
			return nil, 0, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, l)
	}
	return links, total, rows.Err()
}

func UpdateLink(db *sql.DB, l *Link) error {
	active := 0
	if l.IsActive {
		active = 1
	}
	tracking := 0
	if l.TrackingEnabled {
		tracking = 1
	}
	_, err := db.Exec(
		`UPDATE links SET short_code = ?, destination = ?, title = ?, notes = ?, owner = ?, is_active = ?, tracking_enabled = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		l.ShortCode, l.Destination, l.Title, l.Notes, l.Owner, active, tracking, l.ExpiresAt, l.ID,
	)
	if err != nil {
		return fmt.Errorf("update link: %w", err)
	}
	return GetLinkByID(db, l)
}

func SoftDeleteLink(db *sql.DB, id int64) error {
	res, err := db.Exec(`UPDATE links SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("soft delete link: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func ShortCodeExists(db *sql.DB, code string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM links WHERE short_code = ?`, code).Scan(&count)
	return count > 0, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLink(row *sql.Row, l *Link) error {
	return scanLinkRow(row, l)
}

func scanLinkRow(s scanner, l *Link) error {
	var active, tracking int
	var expires sql.NullTime
	if err := s.Scan(
		&l.ID, &l.ShortCode, &l.Destination, &l.Title, &l.Notes, &l.Owner,
		&active, &tracking, &expires, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return err
	}
	l.IsActive = active == 1
	l.TrackingEnabled = tracking == 1
	if expires.Valid {
		t := expires.Time
		l.ExpiresAt = &t
	}
	return nil
}
