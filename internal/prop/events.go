package prop

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Event is a terminal-outcome record of a candidate: which module ended (or
// observed) it, the tag map at that moment, and the physical state worth
// keeping once the candidate is dropped.
type Event struct {
	CandidateSerial  string            `json:"candidate_serial"`
	ParticleID       int               `json:"particle_id"`
	Energy           float64           `json:"energy"`
	TrajectoryLength float64           `json:"trajectory_length"`
	Redshift         float64           `json:"redshift"`
	Position         Vector3           `json:"position"`
	Weight           float64           `json:"weight"`
	Active           bool              `json:"active"`
	Tags             map[string]string `json:"tags,omitempty"`
	Timestamp        int64             `json:"timestamp"`
}

// EventFromCandidate captures the candidate's current state.
func EventFromCandidate(c *Candidate) Event {
	return Event{
		CandidateSerial:  c.Serial(),
		ParticleID:       c.Current.ID(),
		Energy:           c.Current.Energy(),
		TrajectoryLength: c.TrajectoryLength(),
		Redshift:         c.Redshift(),
		Position:         c.Current.Position(),
		Weight:           c.Weight(),
		Active:           c.IsActive(),
		Tags:             c.Tags(),
		Timestamp:        time.Now().Unix(),
	}
}

// JSON returns the event as JSON bytes.
func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier is a sink for candidate events.
type Notifier interface {
	// ID returns a unique identifier for this notifier.
	ID() string

	// Type returns the notifier kind (e.g. "websocket", "webhook").
	Type() string

	// Notify delivers one event; the context carries cancellation and
	// timeout.
	Notify(ctx context.Context, event Event) error

	// Close releases the notifier's resources.
	Close() error
}

type eventJob struct {
	event       Event
	notifierIDs []string
}

// EventBus routes candidate events to registered notifiers. Delivery is
// asynchronous over a bounded queue: publishing never blocks the stepping
// loop, and events are dropped with a log line when the queue is full.
// Failed deliveries are retried with exponential backoff.
type EventBus struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	jobs      chan eventJob
	closed    bool
	wg        sync.WaitGroup
	log       Logger
}

// NewEventBus creates a bus with a single delivery worker.
func NewEventBus(log Logger) *EventBus {
	if log == nil {
		log = NewNoOpLogger()
	}
	bus := &EventBus{
		notifiers: make(map[string]Notifier),
		jobs:      make(chan eventJob, 1024),
		log:       log,
	}
	bus.wg.Add(1)
	go bus.worker()
	return bus
}

// Register adds a notifier to the bus.
func (b *EventBus) Register(n Notifier) error {
	if n == nil {
		return fmt.Errorf("notifier cannot be nil")
	}
	id := n.ID()
	if id == "" {
		return fmt.Errorf("notifier ID cannot be empty")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.notifiers[id]; exists {
		return fmt.Errorf("notifier with ID %s already exists", id)
	}
	b.notifiers[id] = n
	return nil
}

// Unregister closes and removes a notifier.
func (b *EventBus) Unregister(id string) error {
	b.mu.Lock()
	n, exists := b.notifiers[id]
	delete(b.notifiers, id)
	b.mu.Unlock()
	if !exists {
		return fmt.Errorf("notifier with ID %s not found", id)
	}
	if err := n.Close(); err != nil {
		return fmt.Errorf("closing notifier %s: %w", id, err)
	}
	return nil
}

// Notifiers returns the registered notifier IDs.
func (b *EventBus) Notifiers() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.notifiers))
	for id := range b.notifiers {
		ids = append(ids, id)
	}
	return ids
}

// Publish enqueues an event for the given notifiers (all registered ones
// when none are named). Best effort: a full queue drops the event.
func (b *EventBus) Publish(event Event, notifierIDs ...string) {
	// the closed check and the send share the read lock, so Close cannot
	// close the channel in between; the send never blocks under the lock
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	if len(notifierIDs) == 0 {
		notifierIDs = make([]string, 0, len(b.notifiers))
		for id := range b.notifiers {
			notifierIDs = append(notifierIDs, id)
		}
	}
	if len(notifierIDs) == 0 {
		return
	}

	select {
	case b.jobs <- eventJob{event: event, notifierIDs: notifierIDs}:
	default:
		b.log.Warnf("event queue full, dropping event for candidate %s", event.CandidateSerial)
	}
}

func (b *EventBus) worker() {
	defer b.wg.Done()
	for job := range b.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		for _, id := range job.notifierIDs {
			b.notifyWithRetry(ctx, id, job.event)
		}
		cancel()
	}
}

func (b *EventBus) notifyWithRetry(ctx context.Context, notifierID string, event Event) {
	b.mu.RLock()
	n, ok := b.notifiers[notifierID]
	b.mu.RUnlock()
	if !ok {
		b.log.Errorf("event delivery failed: notifier %s not found", notifierID)
		return
	}

	const maxRetries = 3
	backoff := 100 * time.Millisecond
	for attempt := 0; ; attempt++ {
		err := n.Notify(ctx, event)
		if err == nil {
			return
		}
		b.log.Warnf("event delivery failed: notifier=%s attempt=%d error=%v", notifierID, attempt+1, err)
		if attempt == maxRetries {
			b.log.Errorf("event delivery gave up after %d attempts: notifier=%s", maxRetries+1, notifierID)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

// Close drains the queue, stops the worker and closes every notifier.
func (b *EventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.jobs)
	b.mu.Unlock()

	b.wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	var firstErr error
	for id, n := range b.notifiers {
		if err := n.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing notifier %s: %w", id, err)
		}
	}
	b.notifiers = make(map[string]Notifier)
	return firstErr
}

// RecordAction is a Module that publishes the candidate's state to an event
// bus. Chain it as a rejection action to record candidates the moment they
// are dropped, or run it inline to trace every iteration.
type RecordAction struct {
	bus         *EventBus
	notifierIDs []string
}

func NewRecordAction(bus *EventBus, notifierIDs ...string) *RecordAction {
	return &RecordAction{bus: bus, notifierIDs: notifierIDs}
}

func (a *RecordAction) Process(c *Candidate) {
	a.bus.Publish(EventFromCandidate(c), a.notifierIDs...)
}

func (a *RecordAction) Description() string {
	return "Record candidate to event bus"
}
