package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Client publishes and subscribes to instance-scoped run events.
// The client is safe for concurrent use.
type Client struct {
	rdb          *redis.Client
	instanceName string
}

// NewClient creates a client for the given instance.
// Returns an error if instanceName is not a valid instance name.
func NewClient(redisOpts *redis.Options, instanceName string) (*Client, error) {
	if err := ValidateInstanceName(instanceName); err != nil {
		return nil, err
	}

	return &Client{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// Dial parses a redis:// URL and creates a client for instanceName.
func Dial(redisURL, instanceName string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return NewClient(opts, instanceName)
}

// InstanceName returns the namespace this client publishes under.
func (c *Client) InstanceName() string {
	return c.instanceName
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// PublishRunEvent validates ev and publishes it as JSON.
// A missing ID or timestamp is filled in before validation.
func (c *Client) PublishRunEvent(ctx context.Context, ev *RunEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.TimestampMs == 0 {
		ev.TimestampMs = time.Now().UnixMilli()
	}
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("invalid run event: %w", err)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal run event: %w", err)
	}

	channel := RunEventsChannel(c.instanceName)
	if err := c.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish run event: %w", err)
	}
	return nil
}

// Subscription is an active subscription to run events.
// Caller must call Close() when done.
type Subscription struct {
	events <-chan *RunEvent
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of run events. It is closed when the
// subscription is closed or its context is cancelled.
func (s *Subscription) Events() <-chan *RunEvent {
	return s.events
}

// Errors returns non-fatal subscription errors such as undecodable messages.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeRunEvents subscribes to this instance's run events. It returns
// once Redis has confirmed the subscription, so events published after it
// returns are delivered.
func (c *Client) SubscribeRunEvents(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, RunEventsChannel(c.instanceName))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to run events: %w", err)
	}

	eventsChan := make(chan *RunEvent, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var ev RunEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal run event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &ev:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}
