package redisad

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"hotel_service/internal/adapters/observability"
)

const keyPrefix = "metrics:counter:"

// CounterSink is a domain.MetricsSink that keeps counters in Redis, one
// INCR per increment. Writes happen off the caller's goroutine and errors
// are logged and dropped.
type CounterSink struct {
	c       *redis.Client
	timeout time.Duration

	mu     sync.Mutex // guards closed and wg.Add against Close
	closed bool
	wg     sync.WaitGroup
}

func New(addr, pass string, db int) *CounterSink {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

func NewWithClient(c *redis.Client) *CounterSink {
	return &CounterSink{c: c, timeout: 500 * time.Millisecond}
}

// Increment after Close is dropped.
func (s *CounterSink) Increment(name string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		observability.ObserveSinkError("redis")
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.c.Incr(ctx, keyPrefix+name).Err(); err != nil {
			observability.ObserveSinkError("redis")
			log.Warn().Err(err).Str("counter", name).Msg("redis counter increment dropped")
		}
	}()
}

// Value reads a counter back; a counter never incremented reads as 0.
func (s *CounterSink) Value(ctx context.Context, name string) (int64, error) {
	n, err := s.c.Get(ctx, keyPrefix+name).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// Close waits for in-flight increments and closes the client.
func (s *CounterSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()
	return s.c.Close()
}
