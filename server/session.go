package server

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"farmalytics/analysis"
	"farmalytics/dataset"
)

// Session is one uploaded dataset kept in memory between requests. Result
// caches the last analysis run together with the configuration that
// produced it, so repeated GETs with the same parameters skip recompute.
type Session struct {
	ID         string
	Filename   string
	UploadedAt time.Time
	Table      *dataset.Table
	Roles      analysis.RoleMapping

	mu         sync.Mutex
	result     *analysis.Result
	resultCfg  analysis.Config
	reportPath string
}

// CachedResult returns the stored analysis when it was produced with cfg.
func (s *Session) CachedResult(cfg analysis.Config) (*analysis.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil && s.resultCfg == cfg {
		return s.result, true
	}
	return nil, false
}

// StoreResult caches the analysis run for cfg.
func (s *Session) StoreResult(cfg analysis.Config, res *analysis.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = res
	s.resultCfg = cfg
}

// ReportPath returns the last generated report file, empty if none yet.
func (s *Session) ReportPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reportPath
}

// SetReportPath records the last generated report file.
func (s *Session) SetReportPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportPath = path
}

// SessionStore is a concurrency-safe in-memory registry of sessions. When
// maxSessions is exceeded the oldest upload is evicted.
type SessionStore struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
	now         func() time.Time
}

// NewSessionStore builds a store holding at most maxSessions datasets.
func NewSessionStore(maxSessions int) *SessionStore {
	if maxSessions <= 0 {
		maxSessions = 50
	}
	return &SessionStore{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// Add registers a new session for the table and returns it.
func (st *SessionStore) Add(filename string, t *dataset.Table, roles analysis.RoleMapping) *Session {
	s := &Session{
		ID:         uuid.New().String(),
		Filename:   filename,
		UploadedAt: st.now(),
		Table:      t,
		Roles:      roles,
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.sessions) >= st.maxSessions {
		st.evictOldestLocked()
	}
	st.sessions[s.ID] = s
	return s
}

// Get looks a session up by ID.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete removes a session. Reports whether it existed.
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// List returns all sessions ordered by upload time, newest first.
func (st *SessionStore) List() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *SessionStore) evictOldestLocked() {
	var oldestID string
	var oldestAt time.Time
	for id, s := range st.sessions {
		if oldestID == "" || s.UploadedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = s.UploadedAt
		}
	}
	if oldestID != "" {
		delete(st.sessions, oldestID)
	}
}
