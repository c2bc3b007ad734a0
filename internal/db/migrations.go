package db

import "database/sql"

func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS links (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    short_code       TEXT    NOT NULL UNIQUE,
    destination      TEXT    NOT NULL,
    title            TEXT    NOT NULL DEFAULT '',
    notes            TEXT    NOT NULL DEFAULT '',
    owner            TEXT    NOT NULL DEFAULT '',
    is_active        INTEGER NOT NULL DEFAULT 1,
    tracking_enabled INTEGER NOT NULL DEFAULT 1,
    expires_at       DATETIME,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_links_active_code ON links(short_code) WHERE is_active = 1;

CREATE TABLE IF NOT EXISTS clicks (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    link_id         INTEGER NOT NULL,
    clicked_at      DATETIME NOT NULL,
    session_id      TEXT,
    is_bot          INTEGER NOT NULL DEFAULT 0,
    ip              TEXT,
    user_agent      TEXT,
    referer         TEXT,
    referer_domain  TEXT,
    country_code    TEXT,
    country_name    TEXT,
    city            TEXT,
    region          TEXT,
    latitude        REAL,
    longitude       REAL,
    timezone        TEXT,
    browser         TEXT,
    browser_version TEXT,
    os              TEXT,
    device_type     TEXT,
    utm_source      TEXT,
    utm_medium      TEXT,
    utm_campaign    TEXT,
    utm_term        TEXT,
    utm_content     TEXT,
    raw_data        TEXT,
    FOREIGN KEY (link_id) REFERENCES links(id)
);

CREATE INDEX IF NOT EXISTS idx_clicks_link_id ON clicks(link_id);
CREATE INDEX IF NOT EXISTS idx_clicks_clicked_at ON clicks(clicked_at);
`
