package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-center-api/pkg/jobs"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Handle(ctx context.Context, evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(zap.NewNop())
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), NewEvent(SubjectAssignedEvent, SubjectAssigned{TeacherID: "t1"}))
	})
}

func TestBusInlineDeliveryIgnoresSubscriberErrors(t *testing.T) {
	bus := NewBus(zap.NewNop())
	rec := &recorder{}
	bus.Subscribe(SubjectAssignedEvent, "failing", SubscriberFunc(func(ctx context.Context, evt Event) error {
		return errors.New("down")
	}))
	bus.Subscribe(SubjectAssignedEvent, "recorder", rec)
	bus.Subscribe("other", "unrelated", SubscriberFunc(func(ctx context.Context, evt Event) error {
		t.Fatal("unrelated subscriber called")
		return nil
	}))

	bus.Publish(context.Background(), NewEvent(SubjectAssignedEvent, SubjectAssigned{TeacherID: "t1", SubjectID: "s1", AssignmentID: "a1"}))

	require.Equal(t, 1, rec.count())
	payload := rec.events[0].Payload.(SubjectAssigned)
	assert.Equal(t, "a1", payload.AssignmentID)
}

func TestBusQueuedDelivery(t *testing.T) {
	bus := NewBus(zap.NewNop())
	queue := jobs.NewQueue("events", bus.Dispatch, jobs.QueueConfig{Workers: 1, BufferSize: 4})
	queue.Start(context.Background())
	defer queue.Stop()
	bus.Attach(queue)

	rec := &recorder{}
	bus.Subscribe(AllEvents, "all", rec)
	bus.Publish(context.Background(), NewEvent(SubjectAssignedEvent, SubjectAssigned{}))

	assert.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
}

type fakeRedis struct {
	channel string
	message []byte
	err     error
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.message, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedisForwarder(t *testing.T) {
	client := &fakeRedis{}
	fwd := NewRedisForwarder(client, "tuition.events")

	evt := NewEvent(SubjectAssignedEvent, SubjectAssigned{TeacherID: "t1", SubjectID: "s1", AssignmentID: "a1"})
	require.NoError(t, fwd.Handle(context.Background(), evt))
	assert.Equal(t, "tuition.events", client.channel)

	var decoded struct {
		Name    string          `json:"name"`
		Payload SubjectAssigned `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(client.message, &decoded))
	assert.Equal(t, SubjectAssignedEvent, decoded.Name)
	assert.Equal(t, "t1", decoded.Payload.TeacherID)

	client.err = errors.New("redis down")
	assert.Error(t, fwd.Handle(context.Background(), evt))
}
