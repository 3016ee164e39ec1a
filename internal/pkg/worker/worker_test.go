package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePublisher struct {
	mu       sync.Mutex
	failures int
	calls    int
	keys     []string
}

func (f *fakePublisher) Publish(ctx context.Context, key string, event interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errors.New("broker unavailable")
	}
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakePublisher) Topic() string { return "gift-redemptions" }
func (f *fakePublisher) Close() error  { return nil }

func (f *fakePublisher) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

func TestWorkerPool_Publish(t *testing.T) {
	pub := &fakePublisher{}
	pool := NewWorkerPool(pub, nil, 2, 16)
	pool.Start()

	pool.Publish("user-1", map[string]int{"orderId": 1})
	pool.Publish("user-2", map[string]int{"orderId": 2})

	assert.Eventually(t, func() bool { return len(pub.published()) == 2 }, time.Second, 5*time.Millisecond)
	pool.Stop()
	assert.ElementsMatch(t, []string{"user-1", "user-2"}, pub.published())
}

func TestWorkerPool_RetriesFailedPublish(t *testing.T) {
	pub := &fakePublisher{failures: 2}
	pool := NewWorkerPool(pub, nil, 1, 16)
	pool.RetryDelay = time.Millisecond
	pool.Start()
	defer pool.Stop()

	pool.Publish("user-1", "event")

	assert.Eventually(t, func() bool { return len(pub.published()) == 1 }, time.Second, 5*time.Millisecond)
	pub.mu.Lock()
	assert.Equal(t, 3, pub.calls)
	pub.mu.Unlock()
}

func TestWorkerPool_StopRejectsNewTasks(t *testing.T) {
	pub := &fakePublisher{}
	pool := NewWorkerPool(pub, nil, 1, 4)
	pool.Start()
	pool.Stop()

	// Must not panic on closed channels
	pool.Publish("user-1", "late")
	pool.Stop()
	assert.Empty(t, pub.published())
}
