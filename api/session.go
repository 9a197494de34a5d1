package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/seenimoa/investdash/internal/gate"
)

// SessionCookie names the cookie carrying the session ID.
const SessionCookie = "investdash_session"

type ctxKey struct{}

// sessionFrom returns the session attached by requireSession.
func sessionFrom(ctx context.Context) *gate.Session {
	sess, _ := ctx.Value(ctxKey{}).(*gate.Session)
	return sess
}

// lookupSession resolves the request's cookie to an unlocked session.
func (s *Server) lookupSession(r *http.Request) (*gate.Session, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	sess, ok := s.sessions.Get(c.Value)
	if !ok || !sess.Unlocked() {
		return nil, false
	}
	return sess, true
}

// requireSession rejects requests without an unlocked session using deny.
func (s *Server) requireSession(deny http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := s.lookupSession(r)
			if !ok {
				deny(w, r)
				return
			}
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("session", shortID(sess.ID))
			})
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
		})
	}
}

// login checks the submitted secret and, on success, sets the session cookie.
func (s *Server) login(w http.ResponseWriter, r *http.Request, password string) bool {
	sess, ok := s.sessions.Login(s.gate, password)
	s.metrics.RecordLogin(ok)
	if !ok {
		hlog.FromRequest(r).Warn().Msg("login rejected")
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	hlog.FromRequest(r).Info().Str("session", shortID(sess.ID)).Msg("session unlocked")
	return true
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func unauthorizedJSON(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusUnauthorized, "login required")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
