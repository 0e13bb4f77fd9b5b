package utils

import (
	"context"
)

// UnlimitedChannel never blocks writers for longer than the pump loop takes to move a
// value into its backlog.
type UnlimitedChannel[T any] struct {
	in      chan T
	out     chan T
	done    chan struct{}
	backlog *Deque[T]
	cancel  context.CancelFunc
}

// NewUnlimitedChannel starts the pump goroutine and returns the channel.
func NewUnlimitedChannel[T any]() *UnlimitedChannel[T] {
	ctx, cancel := context.WithCancel(context.Background())
	c := &UnlimitedChannel[T]{
		in:      make(chan T),
		out:     make(chan T),
		done:    make(chan struct{}),
		backlog: NewDeque[T](),
		cancel:  cancel,
	}
	go c.pump(ctx)
	return c
}

func (c *UnlimitedChannel[T]) pump(ctx context.Context) {
	defer close(c.done)
	for {
		// Shutdown has priority over pending traffic.
		select {
		case <-ctx.Done():
			return
		default:
		}

		next, ok := c.backlog.Head()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case v := <-c.in:
				c.backlog.PushBack(v)
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case v := <-c.in:
			c.backlog.PushBack(v)
		case c.out <- next:
			c.backlog.PopFront()
		}
	}
}

// In returns the write side.
func (c *UnlimitedChannel[T]) In() chan<- T {
	return c.in
}

// Out returns the read side.
func (c *UnlimitedChannel[T]) Out() <-chan T {
	return c.out
}

// Close stops the pump. Values still in the backlog stay available through Dump.
func (c *UnlimitedChannel[T]) Close() {
	c.cancel()
}

// Done is closed once the pump has exited.
func (c *UnlimitedChannel[T]) Done() <-chan struct{} {
	return c.done
}

// Len returns the backlog size. Only meaningful after Done is closed.
func (c *UnlimitedChannel[T]) Len() uint64 {
	return c.backlog.Len()
}

// Dump returns the values left in the backlog. Only safe after Done is closed.
func (c *UnlimitedChannel[T]) Dump() []T {
	return c.backlog.Slice()
}
