package models

import (
	"database/sql"
	"fmt"
)

type LinkWithClicks struct {
	Link       Link `json:"link"`
	ClickCount int  `json:"click_count"`
}

func TotalLinkCount(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM links WHERE is_active = 1`).Scan(&count)
	return count, err
}

func ClicksToday(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM clicks WHERE date(clicked_at) = date('now')`).Scan(&count)
	return count, err
}

func ClicksAllTime(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM clicks`).Scan(&count)
	return count, err
}

func TopLinksByClicks(db *sql.DB, limit int) ([]LinkWithClicks, error) {
	rows, err := db.Query(
		`SELECT l.id, l.short_code, l.destination, l.title, l.notes, l.owner, l.is_active, l.tracking_enabled, l.expires_at, l.created_at, l.updated_at, COUNT(c.id) as click_count
		FROM links l
		LEFT JOIN clicks c ON c.link_id = l.id
		WHERE l.is_active = 1
		GROUP BY l.id
		ORDER BY click_count DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top links: %w", err)
	}
	defer rows.Close()

	var results []LinkWithClicks
	for rows.Next() {
		var lc LinkWithClicks
		var active, tracking int
		var expires sql.NullTime
		if err := rows.Scan(
			&lc.Link.ID, &lc.Link.ShortCode, &lc.Link.Destination, &lc.Link.Title,
			&lc.Link.Notes, &lc.Link.Owner, &active, &tracking, &expires,
			&lc.Link.CreatedAt, &lc.Link.UpdatedAt, &lc.ClickCount,
		); err != nil {
			return nil, fmt.Errorf("scan link with clicks: %w", err)
		}
		lc.Link.IsActive = active == 1
		lc.Link.TrackingEnabled = tracking == 1
		if expires.Valid {
			t := expires.Time
			lc.Link.ExpiresAt = &t
		}
		results = append(results, lc)
	}
	return results, rows.Err()
}
