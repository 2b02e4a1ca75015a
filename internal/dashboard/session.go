package dashboard

import (
	"context"
	"time"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/cache"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/risk"
)

// Student is the student currently shown on a dashboard.
type Student struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	GradeLevel int          `json:"gradeLevel"`
	Metrics    risk.Metrics `json:"metrics"`
}

// Session is the dashboard state of one profile. Workflows never mutate a
// session in place; they build the next value and store it on success.
type Session struct {
	Profile    string           `json:"profile"`
	Student    *Student         `json:"student,omitempty"`
	Assessment *risk.Assessment `json:"assessment,omitempty"`
	Patterns   risk.Patterns    `json:"patterns,omitempty"`
	Factors    []string         `json:"factors"`
}

// NewSession returns the empty session of a profile.
func NewSession(profile string) Session {
	return Session{Profile: profile, Factors: []string{}}
}

// SessionStore keeps sessions in memory and forgets idle ones after the TTL.
type SessionStore struct {
	sessions *cache.Cache[string, Session]
}

// NewSessionStore creates a store whose sessions expire after ttl of
// inactivity.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{sessions: cache.New[string, Session](ttl)}
}

// Load returns the session of profile, or a fresh one.
func (s *SessionStore) Load(profile string) Session {
	if sess, ok := s.sessions.Get(profile); ok {
		return sess
	}
	return NewSession(profile)
}

// Save stores sess under its profile.
func (s *SessionStore) Save(sess Session) {
	s.sessions.Set(sess.Profile, sess)
}

// Delete forgets the session of profile.
func (s *SessionStore) Delete(profile string) {
	s.sessions.Delete(profile)
}

// Size is the number of live sessions.
func (s *SessionStore) Size() int {
	return s.sessions.Size()
}

// Run evicts idle sessions until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	s.sessions.Run(ctx, interval)
}

// Stats reports store occupancy.
func (s *SessionStore) Stats() map[string]interface{} {
	return s.sessions.Stats()
}
