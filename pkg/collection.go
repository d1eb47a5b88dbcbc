package trigger

import (
	"fmt"
	"sort"
)

// CollectionKey identifies an element of a TP or CTW collection.
type CollectionKey struct {
	Clocktick int
	ID        Address
}

func (k CollectionKey) String() string {
	return fmt.Sprintf("(%d, %v)", k.Clocktick, k.ID)
}

type Element interface {
	Key() CollectionKey
}

// Collection is an ordered container of TPs or CTWs. While unlocked elements
// may be added or removed; Lock checks that no two elements share a key and
// turns the collection read-only until Unlock.
type Collection[T Element] struct {
	name   string
	items  []*T
	locked bool
}

func NewCollection[T Element](name string) *Collection[T] {
	return &Collection[T]{name: name}
}

func (c *Collection[T]) Name() string {
	return c.name
}

// Add appends a zero element and returns a handle to it.
func (c *Collection[T]) Add() (*T, error) {
	if c.locked {
		return nil, componentError(c.name, "add", ErrLockedCollection)
	}
	item := new(T)
	c.items = append(c.items, item)
	return item, nil
}

func (c *Collection[T]) Remove(i int) error {
	if c.locked {
		return componentError(c.name, "remove", ErrLockedCollection)
	}
	if i < 0 || i >= len(c.items) {
		return componentError(c.name, "remove", &ErrRange{What: "index", Value: i, Bound: len(c.items)})
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

func (c *Collection[T]) Lock() error {
	if c.locked {
		return componentError(c.name, "lock", ErrAlreadyLocked)
	}
	seen := make(map[CollectionKey]int, len(c.items))
	for i, item := range c.items {
		key := (*item).Key()
		if first, ok := seen[key]; ok {
			return componentError(c.name, "lock", &ErrDuplicate{Key: key.String(), First: first, Second: i})
		}
		seen[key] = i
	}
	c.locked = true
	return nil
}

func (c *Collection[T]) Unlock() error {
	if !c.locked {
		return componentError(c.name, "unlock", ErrAlreadyUnlocked)
	}
	c.locked = false
	return nil
}

func (c *Collection[T]) IsLocked() bool {
	return c.locked
}

// Reset empties an unlocked collection.
func (c *Collection[T]) Reset() error {
	if c.locked {
		return componentError(c.name, "reset", ErrLockedCollection)
	}
	c.items = nil
	return nil
}

func (c *Collection[T]) Len() int {
	return len(c.items)
}

func (c *Collection[T]) At(i int) *T {
	return c.items[i]
}

func (c *Collection[T]) Items() []*T {
	items := make([]*T, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Collection[T]) Find(match func(*T) bool) []*T {
	var found []*T
	for _, item := range c.items {
		if match(item) {
			found = append(found, item)
		}
	}
	return found
}

func (c *Collection[T]) ByKey(key CollectionKey) (*T, bool) {
	for _, item := range c.items {
		if (*item).Key() == key {
			return item, true
		}
	}
	return nil, false
}

func (c *Collection[T]) ByClocktick(tick int) []*T {
	return c.Find(func(item *T) bool {
		return (*item).Key().Clocktick == tick
	})
}

func (c *Collection[T]) ByClocktickAndCrate(tick int, crate int) []*T {
	return c.Find(func(item *T) bool {
		key := (*item).Key()
		return key.Clocktick == tick && key.ID.Depth > 0 && int(key.ID.Fields[0]) == crate
	})
}

// ByPrefix returns the elements whose id starts with the fields of prefix,
// e.g. every TP of one board.
func (c *Collection[T]) ByPrefix(prefix Address) []*T {
	return c.Find(func(item *T) bool {
		return (*item).Key().ID.HasPrefix(prefix)
	})
}

func (c *Collection[T]) ClocktickRange() (int, int, error) {
	if len(c.items) == 0 {
		return 0, 0, componentError(c.name, "clocktick range", ErrEmptyCollection)
	}
	first := (*c.items[0]).Key().Clocktick
	last := first
	for _, item := range c.items[1:] {
		tick := (*item).Key().Clocktick
		if tick < first {
			first = tick
		}
		if tick > last {
			last = tick
		}
	}
	return first, last, nil
}

// Clockticks returns the distinct clockticks in increasing order.
func (c *Collection[T]) Clockticks() []int {
	set := make(map[int]struct{})
	for _, item := range c.items {
		set[(*item).Key().Clocktick] = struct{}{}
	}
	ticks := make([]int, 0, len(set))
	for tick := range set {
		ticks = append(ticks, tick)
	}
	sort.Ints(ticks)
	return ticks
}
