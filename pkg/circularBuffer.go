package trigger

// circularBuffer keeps the last capacity values pushed, oldest first.
type circularBuffer[T any] struct {
	items []T
	start int
	size  int
}

func newCircularBuffer[T any](capacity int) *circularBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &circularBuffer[T]{items: make([]T, capacity)}
}

func (b *circularBuffer[T]) Len() int {
	return b.size
}

func (b *circularBuffer[T]) Full() bool {
	return b.size == len(b.items)
}

// Push appends v, overwriting the oldest value when the buffer is full.
func (b *circularBuffer[T]) Push(v T) {
	if b.Full() {
		b.items[b.start] = v
		b.start = (b.start + 1) % len(b.items)
		return
	}
	b.items[(b.start+b.size)%len(b.items)] = v
	b.size++
}

func (b *circularBuffer[T]) At(i int) T {
	if i < 0 || i >= b.size {
		panic(&ErrRange{What: "buffer index", Value: i, Bound: b.size})
	}
	return b.items[(b.start+i)%len(b.items)]
}

func (b *circularBuffer[T]) Clear() {
	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.start = 0
	b.size = 0
}
