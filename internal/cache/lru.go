package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lynxlabs/lynx/internal/models"
)

// LinkCache keeps hot links in memory so the redirect path usually skips
// the database. Entries are raw links; resolution state (active, expired)
// is evaluated per request by the caller.
type LinkCache struct {
	c *lru.Cache[string, *models.Link]
}

func New(size int) (*LinkCache, error) {
	c, err := lru.New[string, *models.Link](size)
	if err != nil {
		return nil, err
	}
	return &LinkCache{c: c}, nil
}

func (lc *LinkCache) Get(code string) (*models.Link, bool) {
	return lc.c.Get(code)
}

func (lc *LinkCache) Set(code string, link *models.Link) {
	lc.c.Add(code, link)
}

func (lc *LinkCache) Invalidate(code string) {
	lc.c.Remove(code)
}
