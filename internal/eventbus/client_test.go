package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestClient creates a test client connected to a miniredis instance
func setupTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr := miniredis.NewMiniRedis()
	err := mr.Start()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func validEvent() *RunEvent {
	return &RunEvent{
		ID:          uuid.New().String(),
		RunID:       uuid.New().String(),
		Type:        EventRunCompleted,
		Algorithm:   "Bubble Sort",
		Status:      "completed",
		Elements:    10,
		ReadCount:   90,
		WriteCount:  40,
		LastAction:  "write",
		DurationUs:  1500,
		TimestampMs: time.Now().UnixMilli(),
	}
}

func TestNewClient(t *testing.T) {
	t.Run("creates client successfully", func(t *testing.T) {
		client, _ := setupTestClient(t)
		assert.Equal(t, "test-instance", client.InstanceName())
		assert.NoError(t, client.Ping(context.Background()))
	})

	t.Run("rejects empty instance name", func(t *testing.T) {
		_, err := NewClient(&redis.Options{Addr: "localhost:6379"}, "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "instance name cannot be empty")
	})
}

func TestDial(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Dial("redis://"+mr.Addr(), "dialled")
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()))

	_, err = Dial("not a url", "dialled")
	assert.Error(t, err)
}

func TestRunEventsChannel(t *testing.T) {
	assert.Equal(t, "sortvis:prod:run_events", RunEventsChannel("prod"))
}

func TestRunEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *RunEvent)
		wantErr string
	}{
		{name: "valid event", mutate: func(*RunEvent) {}},
		{name: "bad id", mutate: func(e *RunEvent) { e.ID = "nope" }, wantErr: "invalid event id"},
		{name: "bad run id", mutate: func(e *RunEvent) { e.RunID = "" }, wantErr: "invalid run id"},
		{name: "bad type", mutate: func(e *RunEvent) { e.Type = "exploded" }, wantErr: "invalid event type"},
		{name: "missing algorithm", mutate: func(e *RunEvent) { e.Algorithm = "" }, wantErr: "algorithm cannot be empty"},
		{name: "negative elements", mutate: func(e *RunEvent) { e.Elements = -1 }, wantErr: "elements must be >= 0"},
		{name: "negative duration", mutate: func(e *RunEvent) { e.DurationUs = -5 }, wantErr: "duration_us must be >= 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := validEvent()
			tt.mutate(ev)
			err := ev.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPublishAndSubscribe(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub, err := client.SubscribeRunEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()

	ev := validEvent()
	require.NoError(t, client.PublishRunEvent(ctx, ev))

	select {
	case got := <-sub.Events():
		require.NotNil(t, got)
		assert.Equal(t, ev.ID, got.ID)
		assert.Equal(t, ev.RunID, got.RunID)
		assert.Equal(t, EventRunCompleted, got.Type)
		assert.Equal(t, uint64(40), got.WriteCount)
	case <-ctx.Done():
		t.Fatal("timed out waiting for run event")
	}
}

func TestPublishRunEvent_FillsDefaults(t *testing.T) {
	client, _ := setupTestClient(t)
	ev := validEvent()
	ev.ID = ""
	ev.TimestampMs = 0

	require.NoError(t, client.PublishRunEvent(context.Background(), ev))
	assert.NotEmpty(t, ev.ID)
	assert.NotZero(t, ev.TimestampMs)
}

func TestPublishRunEvent_RejectsInvalid(t *testing.T) {
	client, _ := setupTestClient(t)
	ev := validEvent()
	ev.Type = "bogus"

	err := client.PublishRunEvent(context.Background(), ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid run event")
}

func TestSubscription_BadPayloadReportsError(t *testing.T) {
	client, mr := setupTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub, err := client.SubscribeRunEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()

	mr.Publish(RunEventsChannel("test-instance"), "{not json")

	select {
	case err := <-sub.Errors():
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal run event")
	case <-ctx.Done():
		t.Fatal("timed out waiting for subscription error")
	}
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	client, _ := setupTestClient(t)
	sub, err := client.SubscribeRunEvents(context.Background())
	require.NoError(t, err)

	assert.NoError(t, sub.Close())
	assert.NoError(t, sub.Close())

	// Events channel is closed once the goroutine exits.
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.Events():
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
