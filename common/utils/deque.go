package utils

// Deque is a ring buffer growing and shrinking by powers of two.
type Deque[T any] struct {
	head uint64
	tail uint64
	size uint64
	buf  []T
}

// NewDeque returns an empty deque.
func NewDeque[T any]() *Deque[T] {
	return &Deque[T]{buf: make([]T, 1)}
}

func (d *Deque[T]) capacity() uint64 {
	return uint64(len(d.buf))
}

// wrap keeps pos inside the ring. Capacity is always a power of two, so the unsigned
// underflow of pos-1 at zero still lands on the last slot.
func (d *Deque[T]) wrap(pos uint64) uint64 {
	return pos & (d.capacity() - 1)
}

func (d *Deque[T]) resize(c uint64) {
	buf := make([]T, c)
	d.copyInto(buf)
	d.buf = buf
	d.head = 0
	d.tail = d.wrap(d.size)
}

func (d *Deque[T]) copyInto(dst []T) {
	if d.size == 0 {
		return
	}
	if d.head < d.tail {
		copy(dst, d.buf[d.head:d.tail])
		return
	}
	n := copy(dst, d.buf[d.head:])
	copy(dst[n:], d.buf[:d.tail])
}

func (d *Deque[T]) grow() {
	if d.size == d.capacity() {
		d.resize(d.capacity() << 1)
	}
}

func (d *Deque[T]) shrink() {
	if d.capacity() > 1 && d.capacity()>>2 > d.size {
		d.resize(d.capacity() >> 1)
	}
}

// PushBack appends v.
func (d *Deque[T]) PushBack(v T) {
	d.grow()
	d.buf[d.tail] = v
	d.tail = d.wrap(d.tail + 1)
	d.size++
}

// PushFront prepends v.
func (d *Deque[T]) PushFront(v T) {
	d.grow()
	d.head = d.wrap(d.head - 1)
	d.buf[d.head] = v
	d.size++
}

// PopFront removes and returns the first element.
func (d *Deque[T]) PopFront() (T, bool) {
	var zero T
	if d.size == 0 {
		return zero, false
	}
	v := d.buf[d.head]
	d.buf[d.head] = zero
	d.head = d.wrap(d.head + 1)
	d.size--
	d.shrink()
	return v, true
}

// PopBack removes and returns the last element.
func (d *Deque[T]) PopBack() (T, bool) {
	var zero T
	if d.size == 0 {
		return zero, false
	}
	d.tail = d.wrap(d.tail - 1)
	v := d.buf[d.tail]
	d.buf[d.tail] = zero
	d.size--
	d.shrink()
	return v, true
}

// Head peeks the first element.
func (d *Deque[T]) Head() (T, bool) {
	var zero T
	if d.size == 0 {
		return zero, false
	}
	return d.buf[d.head], true
}

// Back peeks the last element.
func (d *Deque[T]) Back() (T, bool) {
	var zero T
	if d.size == 0 {
		return zero, false
	}
	return d.buf[d.wrap(d.tail-1)], true
}

// Len returns the number of elements.
func (d *Deque[T]) Len() uint64 {
	return d.size
}

// Slice copies the elements front to back.
func (d *Deque[T]) Slice() []T {
	out := make([]T, d.size)
	d.copyInto(out)
	return out
}
