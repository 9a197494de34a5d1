package gate

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seenimoa/investdash/pkg/models"
)

// Session is the state of one browser that passed the gate.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	unlocked     bool
	running      bool
	lastRequest  *models.AnalysisRequest
	snapshots    *models.SnapshotSet
	warnings     []string
	totalFailure bool
	completedAt  time.Time
}

// State is a point-in-time copy of a session's analysis results.
type State struct {
	Request      *models.AnalysisRequest
	Snapshots    *models.SnapshotSet
	Warnings     []string
	TotalFailure bool
	Running      bool
	CompletedAt  time.Time
}

// HasResults reports whether an analysis has completed in this session.
func (s State) HasResults() bool {
	return s.Request != nil
}

func newSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		snapshots: models.NewSnapshotSet(),
	}
}

// Unlocked reports whether the session passed the gate.
func (s *Session) Unlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}

// TryBeginRun claims the session for an analysis run. It returns false when
// a run is already in progress.
func (s *Session) TryBeginRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

// EndRun releases the claim taken by TryBeginRun.
func (s *Session) EndRun() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Complete replaces the session's results with the outcome of a run.
// An empty snapshot set marks the run as a total failure.
func (s *Session) Complete(req models.AnalysisRequest, snaps *models.SnapshotSet, warnings []string) {
	if snaps == nil {
		snaps = models.NewSnapshotSet()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRequest = &req
	s.snapshots = snaps
	s.warnings = append([]string(nil), warnings...)
	s.totalFailure = snaps.Len() == 0
	s.completedAt = time.Now()
}

// State returns a copy of the session's current results.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Request:      s.lastRequest,
		Snapshots:    s.snapshots,
		Warnings:     append([]string(nil), s.warnings...),
		TotalFailure: s.totalFailure,
		Running:      s.running,
		CompletedAt:  s.completedAt,
	}
}

// SessionStore keeps sessions in memory for the life of the process.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Get returns the session with the given ID.
func (st *SessionStore) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Login checks input against the gate and, on success, returns a new unlocked
// session. Failed attempts create nothing.
func (st *SessionStore) Login(g *Gate, input string) (*Session, bool) {
	if !g.CheckAccess(input) {
		return nil, false
	}
	sess := newSession()
	g.Unlock(sess, input)

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()
	return sess, true
}

// Len returns the number of sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
