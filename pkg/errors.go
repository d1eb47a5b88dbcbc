package trigger

import (
	"errors"
	"fmt"
)

var (
	ErrNotInitialized     = errors.New("not initialized")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrAlreadyLocked      = errors.New("already locked")
	ErrAlreadyUnlocked    = errors.New("already unlocked")
	ErrLockedCollection   = errors.New("collection is locked")
	ErrNotLocked          = errors.New("collection is not locked")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrOutOfRange         = errors.New("out of range")
	ErrUnsupportedMode    = errors.New("unsupported tracker mode")
	ErrEmptyCollection    = errors.New("empty collection")
)

// ErrComponent represents a failed operation on a trigger component.
type ErrComponent struct {
	Component string
	Op        string
	Err       error
}

func (e *ErrComponent) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Component, e.Op, e.Err)
}

func (e *ErrComponent) Unwrap() error {
	return e.Err
}

// ErrDuplicate represents two elements of a collection sharing a key.
type ErrDuplicate struct {
	Key    string
	First  int
	Second int
}

func (e *ErrDuplicate) Error() string {
	return fmt.Sprintf("duplicate key %s at positions %d and %d", e.Key, e.First, e.Second)
}

func (e *ErrDuplicate) Unwrap() error {
	return ErrDuplicateKey
}

// ErrRange represents an index outside its configured bounds.
type ErrRange struct {
	What  string
	Value int
	Bound int
}

func (e *ErrRange) Error() string {
	return fmt.Sprintf("%s %d out of range [0, %d)", e.What, e.Value, e.Bound)
}

func (e *ErrRange) Unwrap() error {
	return ErrOutOfRange
}

func componentError(component string, op string, err error) error {
	return &ErrComponent{Component: component, Op: op, Err: err}
}
