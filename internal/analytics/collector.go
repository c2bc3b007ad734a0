package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/lynxlabs/lynx/internal/classify"
	"github.com/lynxlabs/lynx/internal/geo"
	"github.com/lynxlabs/lynx/internal/models"
)

// DirectReferrer is recorded when the Referer header is absent or cannot
// be parsed into a hostname.
const DirectReferrer = "Direct"

type UTMParams struct {
	Source   string
	Medium   string
	Campaign string
	Term     string
	Content  string
}

// UTMFromQuery pulls the standard utm_* parameters out of request query
// values.
func UTMFromQuery(q url.Values) UTMParams {
	return UTMParams{
		Source:   q.Get("utm_source"),
		Medium:   q.Get("utm_medium"),
		Campaign: q.Get("utm_campaign"),
		Term:     q.Get("utm_term"),
		Content:  q.Get("utm_content"),
	}
}

// RawClick is what the redirect handler captures synchronously. Everything
// derived (classification, geo, referrer domain) is filled in later, off
// the request path.
type RawClick struct {
	LinkID    int64
	ClickedAt time.Time
	IP        string
	UserAgent string
	Referer   string
	SessionID string
	IsBot     bool
	UTM       UTMParams
	Query     string
}

// Collector buffers raw clicks and persists them in batches so the
// redirect response never waits on enrichment or the store write.
type Collector struct {
	ch       chan RawClick
	stop     chan struct{}
	db       *sql.DB
	geo      geo.Provider
	done     chan struct{}
	stopOnce sync.Once
}

func NewCollector(db *sql.DB, geoProvider geo.Provider, bufferSize int, flushInterval time.Duration) *Collector {
	c := &Collector{
		ch:   make(chan RawClick, bufferSize),
		stop: make(chan struct{}),
		db:   db,
		geo:  geoProvider,
		done: make(chan struct{}),
	}
	go c.run(flushInterval)
	return c
}

// Push sends a click event non-blocking. Drops the event if buffer is full.
func (c *Collector) Push(click RawClick) {
	select {
	case c.ch <- click:
	default:
		// buffer full, drop event
	}
}

// Shutdown flushes remaining events and returns. Safe to call more than
// once.
func (c *Collector) Shutdown() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

func (c *Collector) run(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-c.stop:
			c.flush()
			return
		}
	}
}

func (c *Collector) flush() {
	var batch []RawClick
	for {
		select {
		case raw := <-c.ch:
			batch = append(batch, raw)
		default:
			goto done
		}
	}
done:
	if len(batch) == 0 {
		return
	}

	clicks := make([]models.Click, 0, len(batch))
	for _, raw := range batch {
		clicks = append(clicks, c.enrich(raw))
	}

	if err := models.BatchInsertClicks(c.db, clicks); err != nil {
		// never propagated: the redirects already went out
		log.Printf("analytics flush error: %v", err)
	} else {
		log.Printf("analytics: flushed %d clicks", len(clicks))
	}
}

func (c *Collector) enrich(raw RawClick) models.Click {
	// The handler already decided is_bot; the UA parse fills the rest.
	cls := classify.Merge(classify.Classification{IsBot: raw.IsBot}, classify.Classify(raw.UserAgent))

	geoResult := c.geo.Lookup(context.Background(), raw.IP)

	rawData, _ := json.Marshal(map[string]string{
		"ip":         raw.IP,
		"user_agent": raw.UserAgent,
		"referer":    raw.Referer,
		"query":      raw.Query,
	})

	return models.Click{
		LinkID:         raw.LinkID,
		ClickedAt:      raw.ClickedAt,
		SessionID:      raw.SessionID,
		IsBot:          cls.IsBot,
		IP:             raw.IP,
		UserAgent:      raw.UserAgent,
		Referer:        raw.Referer,
		RefererDomain:  RefererDomain(raw.Referer),
		CountryCode:    geoResult.CountryCode,
		CountryName:    geoResult.CountryName,
		City:           geoResult.City,
		Region:         geoResult.Region,
		Latitude:       geoResult.Latitude,
		Longitude:      geoResult.Longitude,
		Timezone:       geoResult.Timezone,
		Browser:        cls.Browser,
		BrowserVersion: cls.BrowserVersion,
		OS:             cls.OS,
		DeviceType:     cls.DeviceType,
		UTMSource:      raw.UTM.Source,
		UTMMedium:      raw.UTM.Medium,
		UTMCampaign:    raw.UTM.Campaign,
		UTMTerm:        raw.UTM.Term,
		UTMContent:     raw.UTM.Content,
		RawData:        string(rawData),
	}
}

// RefererDomain extracts the hostname from a referrer URL, or the Direct
// sentinel when there is nothing usable.
func RefererDomain(referer string) string {
	if referer == "" {
		return DirectReferrer
	}
	u, err := url.Parse(referer)
	if err != nil || u.Host == "" {
		return DirectReferrer
	}
	return u.Host
}
