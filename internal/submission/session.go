package submission

import (
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"maqua-crm/internal/briefing"
	"maqua-crm/internal/crm"
)

// Session holds everything needed to create the opportunity after the
// customer application went through: the normalized customer, the built
// opportunity context and the raw application response.
type Session struct {
	Customer            *briefing.Customer
	Context             *briefing.OpportunityContext
	ApplicationResponse crm.Response
	CreatedAt           time.Time
}

// SessionStore keeps opportunity sessions keyed by opaque tokens.
// Entries expire after the configured TTL.
type SessionStore struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewSessionStore builds a store with the given entry lifetime.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionStore{
		cache: gocache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

// TTL reports the configured session lifetime.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Remember stores the session and returns its token.
func (s *SessionStore) Remember(sess *Session) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	sess.CreatedAt = time.Now()
	s.cache.Set(token, sess, gocache.DefaultExpiration)
	return token
}

// Get returns the session for a token, if it is still alive.
func (s *SessionStore) Get(token string) (*Session, bool) {
	value, ok := s.cache.Get(strings.TrimSpace(token))
	if !ok {
		return nil, false
	}
	sess, ok := value.(*Session)
	return sess, ok
}

// Consume drops a session after its opportunity was created.
func (s *SessionStore) Consume(token string) {
	s.cache.Delete(strings.TrimSpace(token))
}
