// Seeds a development database with links and six months of synthetic
// click traffic.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/lynxlabs/lynx/internal/db"
	"github.com/lynxlabs/lynx/internal/models"
)

type seedLink struct {
	code     string
	dest     string
	title    string
	tracking bool
	// weight controls relative click volume (higher = more clicks)
	weight float64
}

var seedLinks = []seedLink{
	{"launch", "https://example.com/blog/launch", "Launch Post", true, 5.0},
	{"docs", "https://docs.example.com", "Documentation", true, 4.5},
	{"pricing", "https://example.com/pricing", "Pricing Page", true, 4.0},
	{"github", "https://github.com/example/repo", "GitHub Repo", true, 3.5},
	{"newsletter", "https://example.com/newsletter", "Newsletter Signup", true, 3.0},
	{"webinar", "https://example.com/webinar/june", "June Webinar", true, 2.5},
	{"jobs", "https://example.com/careers", "Careers", true, 2.0},
	{"changelog", "https://example.com/changelog", "Changelog", true, 1.8},
	{"survey", "https://forms.example.com/nps", "NPS Survey", false, 1.5},
	{"promo", "https://example.com/promo", "Promo Landing", true, 1.2},
}

type weighted struct {
	value  string
	weight float64
}

var referrers = []weighted{
	{"https://www.google.com/search", 30},
	{"", 20}, // direct traffic
	{"https://github.com/example/repo", 15},
	{"https://twitter.com/example", 8},
	{"https://www.reddit.com/r/golang", 7},
	{"https://news.ycombinator.com/item", 5},
	{"https://www.linkedin.com/feed", 4},
	{"https://t.co/abc", 3},
}

var countries = []weighted{
	{"US|United States", 25},
	{"IN|India", 18},
	{"DE|Germany", 9},
	{"GB|United Kingdom", 8},
	{"FR|France", 7},
	{"BR|Brazil", 6},
	{"CA|Canada", 5},
	{"JP|Japan", 4},
	{"NL|Netherlands", 3},
	{"AU|Australia", 3},
	{"", 12}, // enrichment unavailable
}

var userAgents = []weighted{
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", 35},
	{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15", 15},
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0", 12},
	{"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36", 18},
	{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1", 10},
	{"Mozilla/5.0 (iPad; CPU OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1", 4},
	{"Slackbot-LinkExpanding 1.0", 3},
	{"curl/8.0.1", 3},
}

func pick(items []weighted, rng *rand.Rand) string {
	var total float64
	for _, item := range items {
		total += item.weight
	}
	r := rng.Float64() * total
	for _, item := range items {
		r -= item.weight
		if r <= 0 {
			return item.value
		}
	}
	return items[len(items)-1].value
}

func main() {
	dbPath := os.Getenv("LYNX_DB_PATH")
	if dbPath == "" {
		dbPath = "./lynx.db"
	}

	database, err := db.Open(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer database.Close()

	rng := rand.New(rand.NewSource(42)) // deterministic seed
	now := time.Now().UTC()
	sixMonthsAgo := now.AddDate(0, -6, 0)

	fmt.Println("Seeding links...")

	created := make([]models.Link, 0, len(seedLinks))
	for i, sl := range seedLinks {
		createdAt := sixMonthsAgo.AddDate(0, 0, i*3)
		link := models.Link{
			ShortCode:       sl.code,
			Destination:     sl.dest,
			Title:           sl.title,
			IsActive:        true,
			TrackingEnabled: sl.tracking,
		}
		if err := models.CreateLink(database, &link); err != nil {
			log.Fatalf("create link %q: %v", sl.code, err)
		}
		if _, err := database.Exec(`UPDATE links SET created_at = ?, updated_at = ? WHERE id = ?`, createdAt, createdAt, link.ID); err != nil {
			log.Fatalf("backdate link %q: %v", sl.code, err)
		}
		link.CreatedAt = createdAt
		created = append(created, link)
		fmt.Printf("  [%2d] /%s → %s\n", link.ID, sl.code, sl.title)
	}

	fmt.Println("\nGenerating clicks...")

	total := 0
	var batch []models.Click
	for i, link := range created {
		if !link.TrackingEnabled {
			continue
		}
		n := int(seedLinks[i].weight * 400)
		for j := 0; j < n; j++ {
			ua := pick(userAgents, rng)
			country := pick(countries, rng)
			var code, name string
			if country != "" {
				code = country[:2]
				name = country[3:]
			}
			referer := pick(referrers, rng)

			span := now.Sub(link.CreatedAt)
			clickedAt := link.CreatedAt.Add(time.Duration(rng.Int63n(int64(span))))

			ip := ""
			if code != "" {
				ip = fmt.Sprintf("%d.%d.%d.%d", 1+rng.Intn(222), rng.Intn(255), rng.Intn(255), 1+rng.Intn(254))
			}

			batch = append(batch, models.Click{
				LinkID:        link.ID,
				ClickedAt:     clickedAt,
				SessionID:     fmt.Sprintf("seed-%08x", rng.Int63()),
				IP:            ip,
				UserAgent:     ua,
				Referer:       referer,
				CountryCode:   code,
				CountryName:   name,
				RefererDomain: "Direct",
			})
			total++
		}
	}

	// Enrich the batch the same way the collector would
	for i := range batch {
		if batch[i].Referer != "" {
			batch[i].RefererDomain = hostOf(batch[i].Referer)
		}
	}

	if err := models.BatchInsertClicks(database, batch); err != nil {
		log.Fatalf("insert clicks: %v", err)
	}

	fmt.Printf("\nDone: %d links, %d clicks\n", len(created), total)
}

func hostOf(rawURL string) string {
	// crude but fine for seed data
	s := rawURL
	for _, prefix := range []string{"https://", "http://"} {
		if len(s) > len(prefix) && s[:len(prefix)] == prefix {
			s = s[len(prefix):]
		}
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return s[:i]
		}
	}
	return s
}
