// internal/api/sessions.go
package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deepedumate/student-loan-aggregator-sub001/internal/browse"
	stderrors "github.com/deepedumate/student-loan-aggregator-sub001/internal/common/errors"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/metrics"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/otp"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/wizard"
)

// userSession bundles the per-user state machines behind one session id.
type userSession struct {
	browse   *browse.Session
	otpFlow  *otp.Flow
	wizard   *wizard.Orchestrator
	lastSeen time.Time
}

// SessionRegistry keeps per-user session state in memory with an idle TTL.
// Sessions hold UI state only; everything durable lives behind the services,
// so dropping an idle session loses nothing that matters.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*userSession
	ttl      time.Duration
	logger   logger.Logger

	newBrowse func() *browse.Session
	newFlow   func() *otp.Flow
	newWizard func() *wizard.Orchestrator
}

func NewSessionRegistry(
	ttl time.Duration,
	newBrowse func() *browse.Session,
	newFlow func() *otp.Flow,
	newWizard func() *wizard.Orchestrator,
	log logger.Logger,
) *SessionRegistry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionRegistry{
		sessions:  make(map[string]*userSession),
		ttl:       ttl,
		logger:    log.WithFields(map[string]interface{}{"component": "session-registry"}),
		newBrowse: newBrowse,
		newFlow:   newFlow,
		newWizard: newWizard,
	}
}

// Create opens a fresh session and returns its id.
func (r *SessionRegistry) Create() string {
	id := uuid.New().String()

	r.mu.Lock()
	r.sessions[id] = &userSession{
		browse:   r.newBrowse(),
		otpFlow:  r.newFlow(),
		wizard:   r.newWizard(),
		lastSeen: time.Now(),
	}
	metrics.ActiveBrowseSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	return id
}

// get resolves a session id and refreshes its idle timer.
func (r *SessionRegistry) get(id string) (*userSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, stderrors.NewSessionNotFoundError(id)
	}
	s.lastSeen = time.Now()
	return s, nil
}

// Delete removes a session explicitly.
func (r *SessionRegistry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	metrics.ActiveBrowseSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()
}

// StartJanitor sweeps idle sessions until stop is closed.
func (r *SessionRegistry) StartJanitor(interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				r.sweep()
			}
		}
	}()
}

func (r *SessionRegistry) sweep() {
	cutoff := time.Now().Add(-r.ttl)

	r.mu.Lock()
	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	metrics.ActiveBrowseSessions.Set(float64(len(r.sessions)))
	remaining := len(r.sessions)
	r.mu.Unlock()

	if removed > 0 {
		r.logger.Info("swept idle sessions", map[string]interface{}{
			"removed":   removed,
			"remaining": remaining,
		})
	}
}
