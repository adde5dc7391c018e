package dashboard

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/KaramelBytes/csvdash/internal/table"
)

const (
	sessionCookie = "csvdash_session"
	sessionKey    = "session"
)

// Sessions maps a browser session to its loaded Table. Entries expire after
// ttl without activity; each read extends the lifetime.
type Sessions struct {
	store *cache.Cache
	ttl   time.Duration
}

func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Sessions{store: cache.New(ttl, ttl/2), ttl: ttl}
}

// Table returns the Table loaded in session id, refreshing its expiry.
func (s *Sessions) Table(id string) (*table.Table, bool) {
	v, ok := s.store.Get(id)
	if !ok {
		return nil, false
	}
	t, ok := v.(*table.Table)
	if !ok {
		return nil, false
	}
	s.store.Set(id, t, s.ttl)
	return t, true
}

// Put replaces the Table of session id.
func (s *Sessions) Put(id string, t *table.Table) {
	s.store.Set(id, t, s.ttl)
}

// Drop forgets the Table of session id.
func (s *Sessions) Drop(id string) {
	s.store.Delete(id)
}

func (s *Sessions) Count() int { return s.store.ItemCount() }

// middleware assigns every browser a session id cookie.
func (s *Sessions) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err != nil || id == "" {
			id = uuid.NewString()
			c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
		}
		c.Set(sessionKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
