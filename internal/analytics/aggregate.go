package analytics

import (
	"sort"
	"time"

	"github.com/lynxlabs/lynx/internal/models"
)

// Everything here is a pure function over a click slice: dashboards can be
// recomputed at any time from the stored records alone. Ordering always
// keys off ClickedAt, never insertion order.

type Summary struct {
	TotalClicks    int `json:"total_clicks"`
	UniqueVisitors int `json:"unique_visitors"`
	// Estimated marks the last-resort visitor heuristic used when neither
	// IPs nor user agents carry any signal. Not an exact count.
	Estimated bool `json:"estimated"`
}

type Bucket struct {
	Start      time.Time `json:"start"`
	Count      int       `json:"count"`
	Cumulative int       `json:"cumulative"`
}

type Slice struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Named ranges map to a lookback window and a bucket width.
var ranges = map[string]struct {
	lookback time.Duration
	width    time.Duration
}{
	"15m": {15 * time.Minute, time.Minute},
	"1h":  {time.Hour, time.Minute},
	"24h": {24 * time.Hour, time.Hour},
	"7d":  {7 * 24 * time.Hour, 24 * time.Hour},
	"30d": {30 * 24 * time.Hour, 24 * time.Hour},
	"1y":  {365 * 24 * time.Hour, 7 * 24 * time.Hour},
}

// RangeBounds resolves a named range ("15m", "1h", "24h", "7d", "30d",
// "1y") into [from, now) plus the bucket width for its series.
func RangeBounds(name string, now time.Time) (from time.Time, width time.Duration, ok bool) {
	r, ok := ranges[name]
	if !ok {
		return time.Time{}, 0, false
	}
	return now.Add(-r.lookback), r.width, true
}

// Summarize counts total clicks and estimates unique visitors. Distinct
// non-empty IPs are preferred; failing that, distinct (user agent,
// calendar day) pairs; failing that, a heuristic guess of half the clicks,
// flagged Estimated and never exceeding the total.
func Summarize(clicks []models.Click) Summary {
	s := Summary{TotalClicks: len(clicks)}
	if len(clicks) == 0 {
		return s
	}

	ips := make(map[string]struct{})
	for _, c := range clicks {
		if c.IP != "" {
			ips[c.IP] = struct{}{}
		}
	}
	if len(ips) > 0 {
		s.UniqueVisitors = len(ips)
		return s
	}

	uaDays := make(map[string]struct{})
	for _, c := range clicks {
		if c.UserAgent != "" {
			uaDays[c.UserAgent+"|"+c.ClickedAt.UTC().Format("2006-01-02")] = struct{}{}
		}
	}
	if len(uaDays) > 0 {
		s.UniqueVisitors = len(uaDays)
		return s
	}

	s.UniqueVisitors = (len(clicks) + 1) / 2
	s.Estimated = true
	return s
}

// TimeSeries buckets clicks into contiguous fixed-width intervals covering
// [from, to). Empty buckets are emitted as zeros and each bucket carries a
// running cumulative total.
func TimeSeries(clicks []models.Click, from, to time.Time, width time.Duration, loc *time.Location) []Bucket {
	if loc == nil {
		loc = time.UTC
	}
	if !from.Before(to) || width <= 0 {
		return []Bucket{}
	}

	counts := make(map[time.Time]int)
	for _, c := range clicks {
		at := c.ClickedAt
		if at.Before(from) || !at.Before(to) {
			continue
		}
		counts[bucketStart(at, width, loc)]++
	}

	var series []Bucket
	cumulative := 0
	for start := bucketStart(from, width, loc); start.Before(to); start = nextBucket(start, width, loc) {
		n := counts[start]
		cumulative += n
		series = append(series, Bucket{Start: start, Count: n, Cumulative: cumulative})
	}
	return series
}

// bucketStart truncates t to its bucket. Sub-day widths truncate on the
// absolute timeline; day and week buckets align to local calendar days,
// weeks starting Monday.
func bucketStart(t time.Time, width time.Duration, loc *time.Location) time.Time {
	if width < 24*time.Hour {
		return t.Truncate(width).In(loc)
	}
	t = t.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	if width < 7*24*time.Hour {
		return day
	}
	offset := (int(day.Weekday()) + 6) % 7 // days since Monday
	return day.AddDate(0, 0, -offset)
}

func nextBucket(start time.Time, width time.Duration, loc *time.Location) time.Time {
	// Calendar-aware stepping so DST shifts don't misalign day/week buckets.
	switch {
	case width >= 7*24*time.Hour:
		return start.AddDate(0, 0, 7)
	case width >= 24*time.Hour:
		return start.AddDate(0, 0, 1)
	default:
		return start.Add(width)
	}
}

// BreakdownBy groups clicks by a dimension label and returns the top-N
// slices sorted by descending count. Percentages are computed against the
// number of records that have a value for the dimension, not the grand
// total.
func BreakdownBy(clicks []models.Click, label func(models.Click) string, topN int) []Slice {
	counts := make(map[string]int)
	withValue := 0
	for _, c := range clicks {
		l := label(c)
		if l == "" {
			continue
		}
		counts[l]++
		withValue++
	}
	if withValue == 0 {
		return []Slice{}
	}

	slices := make([]Slice, 0, len(counts))
	for l, n := range counts {
		slices = append(slices, Slice{
			Label:   l,
			Count:   n,
			Percent: 100 * float64(n) / float64(withValue),
		})
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Count != slices[j].Count {
			return slices[i].Count > slices[j].Count
		}
		return slices[i].Label < slices[j].Label
	})

	if topN > 0 && len(slices) > topN {
		slices = slices[:topN]
	}
	return slices
}

// Dimension label funcs for BreakdownBy.

func CountryLabel(c models.Click) string {
	if c.CountryName != "" {
		return c.CountryName
	}
	return c.CountryCode
}

func CityLabel(c models.Click) string    { return c.City }
func DeviceLabel(c models.Click) string  { return c.DeviceType }
func BrowserLabel(c models.Click) string { return c.Browser }
func OSLabel(c models.Click) string      { return c.OS }

// ReferrerLabel groups by referring domain; direct traffic is a real
// category, not a missing value.
func ReferrerLabel(c models.Click) string { return c.RefererDomain }

// HourlyDistribution counts clicks per local hour of day across the whole
// slice: 24 fixed buckets, zero-filled.
func HourlyDistribution(clicks []models.Click, loc *time.Location) [24]int {
	if loc == nil {
		loc = time.UTC
	}
	var hours [24]int
	for _, c := range clicks {
		hours[c.ClickedAt.In(loc).Hour()]++
	}
	return hours
}
