package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"sportsreg/internal/access"
	"sportsreg/internal/registration"
)

// clientSession is one client's state. mu serializes that client's
// requests since the editor is stateful.
type clientSession struct {
	mu     sync.Mutex
	token  string
	access access.Session
	editor *registration.Editor
}

type sessionRegistry struct {
	newEditor func() *registration.Editor
	byToken   *expirable.LRU[string, *clientSession]
}

func newSessionRegistry(size int, ttl time.Duration, newEditor func() *registration.Editor) *sessionRegistry {
	return &sessionRegistry{
		newEditor: newEditor,
		byToken:   expirable.NewLRU[string, *clientSession](size, nil, ttl),
	}
}

// fresh returns a guest session that is not stored until it logs in.
func (r *sessionRegistry) fresh() *clientSession {
	return &clientSession{editor: r.newEditor()}
}

// persist assigns a token to cs if it has none and stores it.
func (r *sessionRegistry) persist(cs *clientSession) string {
	if cs.token == "" {
		cs.token = uuid.NewString()
	}
	r.byToken.Add(cs.token, cs)
	return cs.token
}

func (r *sessionRegistry) get(token string) (*clientSession, bool) {
	return r.byToken.Get(token)
}

func (r *sessionRegistry) drop(token string) {
	r.byToken.Remove(token)
}

type ctxKey struct{}

func sessionFrom(ctx context.Context) *clientSession {
	cs, _ := ctx.Value(ctxKey{}).(*clientSession)
	return cs
}

// withSession resolves the session token. Requests without a token run as
// an anonymous guest; an unknown or expired token is rejected.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cs *clientSession
		if token := r.Header.Get(sessionHeader); token != "" {
			var ok bool
			if cs, ok = s.sessions.get(token); !ok {
				s.respondError(w, r, errSessionExpired)
				return
			}
		} else {
			cs = s.sessions.fresh()
		}
		cs.mu.Lock()
		defer cs.mu.Unlock()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, cs)))
	})
}

func (s *Server) require(op access.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sessionFrom(r.Context()).access.Require(op); err != nil {
				s.respondError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
