package analytics

import (
	"database/sql"
	"testing"
	"time"

	"github.com/lynxlabs/lynx/internal/db"
	"github.com/lynxlabs/lynx/internal/geo"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// Insert a test link for FK constraint (id=1)
	_, err = database.Exec(`INSERT INTO links (short_code, destination) VALUES ('test01', 'https://example.com')`)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func clickCount(t *testing.T, database *sql.DB) int {
	t.Helper()
	var n int
	if err := database.QueryRow("SELECT COUNT(*) FROM clicks").Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestCollector_FlushOnShutdown(t *testing.T) {
	database := testDB(t)
	c := NewCollector(database, geo.Noop{}, 1000, time.Hour)

	for i := 0; i < 5; i++ {
		c.Push(RawClick{LinkID: 1, ClickedAt: time.Now()})
	}
	c.Shutdown()

	if n := clickCount(t, database); n != 5 {
		t.Fatalf("count = %d, want 5", n)
	}
}

func TestCollector_PushNonBlockingWhenFull(t *testing.T) {
	database := testDB(t)
	c := NewCollector(database, geo.Noop{}, 1, time.Hour)

	// Push 5 events — only 1 should fit, rest silently dropped, must not block
	for i := 0; i < 5; i++ {
		c.Push(RawClick{LinkID: 1, ClickedAt: time.Now()})
	}
	c.Shutdown()

	if n := clickCount(t, database); n > 1 {
		t.Fatalf("count = %d, want at most 1", n)
	}
}

func TestCollector_FlushOnTicker(t *testing.T) {
	database := testDB(t)
	c := NewCollector(database, geo.Noop{}, 1000, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		c.Push(RawClick{LinkID: 1, ClickedAt: time.Now()})
	}

	// Wait for at least one tick to flush
	time.Sleep(200 * time.Millisecond)

	n := clickCount(t, database)
	if n == 0 {
		t.Fatal("expected clicks to be flushed by ticker, got 0")
	}
	c.Shutdown()
}

func TestCollector_EnrichesUserAgent(t *testing.T) {
	database := testDB(t)
	c := NewCollector(database, geo.Noop{}, 1000, time.Hour)

	c.Push(RawClick{
		LinkID:    1,
		ClickedAt: time.Now(),
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	})
	c.Shutdown()

	var browser, deviceType, osName string
	err := database.QueryRow("SELECT browser, device_type, os FROM clicks LIMIT 1").Scan(&browser, &deviceType, &osName)
	if err != nil {
		t.Fatal(err)
	}
	if browser != "Chrome" {
		t.Errorf("browser = %q, want %q", browser, "Chrome")
	}
	if deviceType != "desktop" {
		t.Errorf("device_type = %q, want %q", deviceType, "desktop")
	}
	if osName != "Windows 10" {
		t.Errorf("os = %q, want %q", osName, "Windows 10")
	}
}

func TestCollector_PreservesHandlerBotFlag(t *testing.T) {
	database := testDB(t)
	c := NewCollector(database, geo.Noop{}, 1000, time.Hour)

	// UA alone looks human; the handler decided it is a bot (e.g. via the
	// datacenter IP check). The flag must survive enrichment.
	c.Push(RawClick{
		LinkID:    1,
		ClickedAt: time.Now(),
		UserAgent: "Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
		IsBot:     true,
	})
	c.Shutdown()

	var bot int
	if err := database.QueryRow("SELECT is_bot FROM clicks LIMIT 1").Scan(&bot); err != nil {
		t.Fatal(err)
	}
	if bot != 1 {
		t.Error("is_bot flag from the handler was lost")
	}
}

func TestCollector_RecordsSessionAndUTM(t *testing.T) {
	database := testDB(t)
	c := NewCollector(database, geo.Noop{}, 1000, time.Hour)

	c.Push(RawClick{
		LinkID:    1,
		ClickedAt: time.Now(),
		SessionID: "sess-42",
		UTM:       UTMParams{Source: "newsletter", Medium: "email", Campaign: "june"},
	})
	c.Shutdown()

	var sessionID, source, medium, campaign string
	err := database.QueryRow("SELECT session_id, utm_source, utm_medium, utm_campaign FROM clicks LIMIT 1").
		Scan(&sessionID, &source, &medium, &campaign)
	if err != nil {
		t.Fatal(err)
	}
	if sessionID != "sess-42" {
		t.Errorf("session_id = %q, want sess-42", sessionID)
	}
	if source != "newsletter" || medium != "email" || campaign != "june" {
		t.Errorf("utm = %q/%q/%q", source, medium, campaign)
	}
}

func TestCollector_RefererDomain(t *testing.T) {
	database := testDB(t)
	c := NewCollector(database, geo.Noop{}, 1000, time.Hour)

	c.Push(RawClick{
		LinkID:    1,
		ClickedAt: time.Now(),
		Referer:   "https://news.ycombinator.com/item?id=1",
	})
	c.Push(RawClick{
		LinkID:    1,
		ClickedAt: time.Now(),
		Referer:   "",
	})
	c.Shutdown()

	rows, err := database.Query("SELECT referer, referer_domain FROM clicks ORDER BY id")
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()

	var got []string
	for rows.Next() {
		var referer, domain string
		if err := rows.Scan(&referer, &domain); err != nil {
			t.Fatal(err)
		}
		got = append(got, domain)
	}
	if len(got) != 2 || got[0] != "news.ycombinator.com" || got[1] != DirectReferrer {
		t.Errorf("referer domains = %v", got)
	}
}

func TestCollector_WritesRawDataSnapshot(t *testing.T) {
	database := testDB(t)
	c := NewCollector(database, geo.Noop{}, 1000, time.Hour)

	c.Push(RawClick{
		LinkID:    1,
		ClickedAt: time.Now(),
		IP:        "203.0.113.9",
		UserAgent: "curl/8.0.1",
		Query:     "utm_source=x",
	})
	c.Shutdown()

	var raw string
	if err := database.QueryRow("SELECT raw_data FROM clicks LIMIT 1").Scan(&raw); err != nil {
		t.Fatal(err)
	}
	if raw == "" || raw == "{}" {
		t.Errorf("raw_data = %q, want input snapshot", raw)
	}
}
