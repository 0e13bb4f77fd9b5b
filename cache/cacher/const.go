package cacher

import "sync"

// Const is a lazily loaded value. The loader runs once until Clear is called.
type Const[T any] struct {
	mu     sync.Mutex
	loaded bool
	value  T
	load   func() (T, error)
}

// NewConst returns a const cacher around load.
func NewConst[T any](load func() (T, error)) *Const[T] {
	if load == nil {
		panic("nil loader func")
	}
	return &Const[T]{load: load}
}

// IsLoaded reports whether the value has been loaded.
func (c *Const[T]) IsLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Get returns the cached value, loading it first if needed. A failed load is not cached.
func (c *Const[T]) Get() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.value, nil
	}
	v, err := c.load()
	if err != nil {
		var zero T
		return zero, err
	}
	c.value, c.loaded = v, true
	return v, nil
}

// MustGet is Get that panics on loader failure.
func (c *Const[T]) MustGet() T {
	v, err := c.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Clear drops the cached value.
func (c *Const[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value, c.loaded = zero, false
}
