package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Click is one durable record of a resolved redirect. Empty strings stand in
// for absent values: the enrichment and classification fields are all
// best-effort.
type Click struct {
	ID             int64
	LinkID         int64
	ClickedAt      time.Time
	SessionID      string
	IsBot          bool
	IP             string
	UserAgent      string
	Referer        string
	RefererDomain  string
	CountryCode    string
	CountryName    string
	City           string
	Region         string
	Latitude       float64
	Longitude      float64
	Timezone       string
	Browser        string
	BrowserVersion string
	OS             string
	DeviceType     string
	UTMSource      string
	UTMMedium      string
	UTMCampaign    string
	UTMTerm        string
	UTMContent     string
	RawData        string
}

const clickColumns = `link_id, clicked_at, session_id, is_bot, ip, user_agent, referer, referer_domain,
	country_code, country_name, city, region, latitude, longitude, timezone,
	browser, browser_version, os, device_type,
	utm_source, utm_medium, utm_campaign, utm_term, utm_content, raw_data`

func BatchInsertClicks(db *sql.DB, clicks []Click) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO clicks (` + clickColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, c := range clicks {
		bot := 0
		if c.IsBot {
			bot = 1
		}
		_, err := stmt.Exec(
			c.LinkID, c.ClickedAt, c.SessionID, bot, c.IP, c.UserAgent, c.Referer, c.RefererDomain,
			c.CountryCode, c.CountryName, c.City, c.Region, c.Latitude, c.Longitude, c.Timezone,
			c.Browser, c.BrowserVersion, c.OS, c.DeviceType,
			c.UTMSource, c.UTMMedium, c.UTMCampaign, c.UTMTerm, c.UTMContent, c.RawData,
		)
		if err != nil {
			return fmt.Errorf("insert click: %w", err)
		}
	}

	return tx.Commit()
}

// ClicksForLinkInRange returns all clicks for one link with clicked_at in
// [from, to), ordered by clicked_at. The aggregator works over this slice.
func ClicksForLinkInRange(ctx context.Context, db *sql.DB, linkID int64, from, to time.Time) ([]Click, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, `+clickColumns+` FROM clicks WHERE link_id = ? AND clicked_at >= ? AND clicked_at < ? ORDER BY clicked_at`,
		linkID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("clicks in range: %w", err)
	}
	defer rows.Close()

	var clicks []Click
	for rows.Next() {
		var c Click
		var bot int
		if err := rows.Scan(
			&c.ID, &c.LinkID, &c.ClickedAt, &c.SessionID, &bot, &c.IP, &c.UserAgent, &c.Referer, &c.RefererDomain,
			&c.CountryCode, &c.CountryName, &c.City, &c.Region, &c.Latitude, &c.Longitude, &c.Timezone,
			&c.Browser, &c.BrowserVersion, &c.OS, &c.DeviceType,
			&c.UTMSource, &c.UTMMedium, &c.UTMCampaign, &c.UTMTerm, &c.UTMContent, &c.RawData,
		); err != nil {
			return nil, fmt.Errorf("scan click: %w", err)
		}
		c.IsBot = bot == 1
		clicks = append(clicks, c)
	}
	return clicks, rows.Err()
}

func ClickCountForLink(db *sql.DB, linkID int64) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM clicks WHERE link_id = ?`, linkID).Scan(&count)
	return count, err
}

func ClickCountsForLinks(db *sql.DB, ids []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	placeholders := "?"
	args := make([]any, len(ids))
	args[0] = ids[0]
	for i := 1; i < len(ids); i++ {
		placeholders += ",?"
		args[i] = ids[i]
	}

	rows, err := db.Query(`SELECT link_id, COUNT(*) FROM clicks WHERE link_id IN (`+placeholders+`) GROUP BY link_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("click counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scan click count: %w", err)
		}
		counts[id] = count
	}
	return counts, rows.Err()
}
