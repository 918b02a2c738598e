package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/savegress/intakedesk/internal/config"
)

// Actions recorded for patient-record operations.
const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionList   = "list"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Outcomes of an audited operation.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Event is one recorded access to a patient record.
type Event struct {
	ID       string    `json:"id"`
	Actor    string    `json:"actor,omitempty"`
	IP       string    `json:"ip,omitempty"`
	Action   string    `json:"action"`
	RecordID string    `json:"recordId,omitempty"`
	Outcome  string    `json:"outcome"`
	Recorded time.Time `json:"recorded"`
}

// AccessRequest contains parameters for access logging
type AccessRequest struct {
	Actor    string
	IP       string
	Action   string
	RecordID string
	Outcome  string
}

// EventFilter defines filters for event queries
type EventFilter struct {
	Action   string
	Outcome  string
	RecordID string
}

// Stats contains audit statistics
type Stats struct {
	TotalEvents  int            `json:"total_events"`
	FailedEvents int            `json:"failed_events"`
	ByAction     map[string]int `json:"by_action"`
	ByOutcome    map[string]int `json:"by_outcome"`
}

// Logger keeps an access trail of patient-record operations. Events are
// handed off through a channel to a background collector so handlers never
// block on the trail.
type Logger struct {
	config  *config.AuditConfig
	events  map[string]*Event
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	eventCh chan *Event
}

// NewLogger creates a new audit logger
func NewLogger(cfg *config.AuditConfig) *Logger {
	return &Logger{
		config:  cfg,
		events:  make(map[string]*Event),
		stopCh:  make(chan struct{}),
		eventCh: make(chan *Event, 1000),
	}
}

// Start starts the background collector
func (l *Logger) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return nil
	}
	l.running = true
	l.mu.Unlock()

	go l.processEvents(ctx)
	return nil
}

// Stop stops the background collector
func (l *Logger) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		close(l.stopCh)
		l.running = false
	}
}

func (l *Logger) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stopCh:
			return
		case event := <-l.eventCh:
			l.mu.Lock()
			l.events[event.ID] = event
			l.mu.Unlock()
		}
	}
}

// LogAccess records one patient-record access event. Returns nil when
// auditing is disabled.
func (l *Logger) LogAccess(ctx context.Context, req *AccessRequest) *Event {
	if !l.config.Enabled {
		return nil
	}

	event := &Event{
		ID:       uuid.New().String(),
		Actor:    req.Actor,
		IP:       req.IP,
		Action:   req.Action,
		RecordID: req.RecordID,
		Outcome:  req.Outcome,
		Recorded: time.Now().UTC(),
	}

	select {
	case l.eventCh <- event:
	default:
		// Trail full; drop rather than block the request path.
	}
	return event
}

// GetEvent retrieves an audit event by ID
func (l *Logger) GetEvent(id string) (*Event, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	event, ok := l.events[id]
	return event, ok
}

// GetEvents retrieves audit events with filters
func (l *Logger) GetEvents(filter EventFilter) []*Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	results := []*Event{}
	for _, event := range l.events {
		if matchesFilter(event, filter) {
			results = append(results, event)
		}
	}
	return results
}

func matchesFilter(event *Event, filter EventFilter) bool {
	if filter.Action != "" && event.Action != filter.Action {
		return false
	}
	if filter.Outcome != "" && event.Outcome != filter.Outcome {
		return false
	}
	if filter.RecordID != "" && event.RecordID != filter.RecordID {
		return false
	}
	return true
}

// GetStats returns audit statistics
func (l *Logger) GetStats() *Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := &Stats{
		ByAction:  make(map[string]int),
		ByOutcome: make(map[string]int),
	}
	for _, event := range l.events {
		stats.TotalEvents++
		stats.ByAction[event.Action]++
		stats.ByOutcome[event.Outcome]++
		if event.Outcome != OutcomeSuccess {
			stats.FailedEvents++
		}
	}
	return stats
}
