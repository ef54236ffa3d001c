package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-center-api/pkg/jobs"
)

// SubjectAssignedEvent fires after a subject assignment is committed.
const SubjectAssignedEvent = "subject_assigned"

// AllEvents subscribes to every event name.
const AllEvents = "*"

// Event is a fire-and-forget notification.
type Event struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// SubjectAssigned is the payload of SubjectAssignedEvent.
type SubjectAssigned struct {
	TeacherID    string `json:"teacher_id"`
	SubjectID    string `json:"subject_id"`
	AssignmentID string `json:"assignment_id"`
}

// NewEvent stamps an event with an ID and the current time.
func NewEvent(name string, payload interface{}) Event {
	return Event{ID: uuid.NewString(), Name: name, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Subscriber consumes events.
type Subscriber interface {
	Handle(ctx context.Context, evt Event) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, evt Event) error

// Handle calls f.
func (f SubscriberFunc) Handle(ctx context.Context, evt Event) error { return f(ctx, evt) }

type enqueuer interface {
	Enqueue(job jobs.Job) error
}

type delivery struct {
	subscriber string
	handler    Subscriber
	event      Event
}

type registration struct {
	name    string
	handler Subscriber
}

// Bus fans events out to subscribers. With a queue attached each delivery runs as a job,
// otherwise deliveries run inline. Subscriber failures never reach the publisher.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]registration
	queue  enqueuer
	logger *zap.Logger
}

// NewBus constructs an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{subs: make(map[string][]registration), logger: logger}
}

// Attach routes future deliveries through q.
func (b *Bus) Attach(q enqueuer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue = q
}

// Subscribe registers a named subscriber for an event name or AllEvents.
func (b *Bus) Subscribe(eventName, subscriberName string, s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], registration{name: subscriberName, handler: s})
}

// Publish delivers evt to every matching subscriber and returns immediately.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	b.mu.RLock()
	targets := make([]registration, 0, len(b.subs[evt.Name])+len(b.subs[AllEvents]))
	targets = append(targets, b.subs[evt.Name]...)
	targets = append(targets, b.subs[AllEvents]...)
	queue := b.queue
	b.mu.RUnlock()

	for _, target := range targets {
		d := delivery{subscriber: target.name, handler: target.handler, event: evt}
		if queue == nil {
			if err := b.Dispatch(ctx, jobs.Job{ID: evt.ID, Type: evt.Name, Payload: d}); err != nil {
				b.logger.Warn("event subscriber failed", zap.String("event", evt.Name), zap.String("subscriber", target.name), zap.Error(err))
			}
			continue
		}
		if err := queue.Enqueue(jobs.Job{ID: evt.ID, Type: evt.Name, Payload: d}); err != nil {
			b.logger.Warn("event delivery dropped", zap.String("event", evt.Name), zap.String("subscriber", target.name), zap.Error(err))
		}
	}
}

// Dispatch is the jobs.Handler that runs one queued delivery.
func (b *Bus) Dispatch(ctx context.Context, job jobs.Job) error {
	d, ok := job.Payload.(delivery)
	if !ok {
		b.logger.Error("unexpected event job payload", zap.String("job_id", job.ID))
		return nil
	}
	return d.handler.Handle(ctx, d.event)
}
