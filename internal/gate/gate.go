// Package gate implements the shared-secret access gate and the per-browser
// session state that an unlocked user carries between requests.
package gate

// Gate compares submitted secrets against the configured one.
type Gate struct {
	secret string
}

// New creates a gate for the given shared secret.
func New(secret string) *Gate {
	return &Gate{secret: secret}
}

// CheckAccess reports whether input equals the secret exactly.
// An empty configured secret never matches.
func (g *Gate) CheckAccess(input string) bool {
	if g.secret == "" {
		return false
	}
	return input == g.secret
}

// Unlock marks sess as unlocked when input matches. A mismatch leaves the
// session unchanged.
func (g *Gate) Unlock(sess *Session, input string) bool {
	if !g.CheckAccess(input) {
		return false
	}
	sess.mu.Lock()
	sess.unlocked = true
	sess.mu.Unlock()
	return true
}
