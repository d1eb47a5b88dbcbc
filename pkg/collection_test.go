package trigger

import (
	"errors"
	"reflect"
	"testing"
)

func addCaloTP(t *testing.T, c *Collection[CaloTP], tick int, crate, board uint32) *CaloTP {
	t.Helper()
	tp, err := c.Add()
	if err != nil {
		t.Fatal(err)
	}
	tp.Clocktick = tick
	tp.ElecID = NewElecID(ElecCaloFEB, crate, board)
	return tp
}

func TestCollectionDuplicateKey(t *testing.T) {
	c := NewCollection[CaloTP]("calo TPs")
	addCaloTP(t, c, 4, 0, 1)
	addCaloTP(t, c, 4, 0, 2)
	addCaloTP(t, c, 4, 0, 1)

	err := c.Lock()
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	var dup *ErrDuplicate
	if !errors.As(err, &dup) || dup.First != 0 || dup.Second != 2 {
		t.Fatalf("unexpected duplicate error %v", err)
	}
	if c.IsLocked() {
		t.Fatal("failed lock left the collection locked")
	}

	if err := c.Remove(2); err != nil {
		t.Fatal(err)
	}
	if err := c.Lock(); err != nil {
		t.Fatal(err)
	}
}

func TestCollectionLockDiscipline(t *testing.T) {
	c := NewCollection[CaloTP]("calo TPs")
	if err := c.Unlock(); !errors.Is(err, ErrAlreadyUnlocked) {
		t.Fatalf("expected ErrAlreadyUnlocked, got %v", err)
	}
	addCaloTP(t, c, 1, 0, 1)
	mustLock(t, c)

	if err := c.Lock(); !errors.Is(err, ErrAlreadyLocked) {
		t.Fatalf("expected ErrAlreadyLocked, got %v", err)
	}
	if _, err := c.Add(); !errors.Is(err, ErrLockedCollection) {
		t.Fatalf("expected ErrLockedCollection, got %v", err)
	}
	if err := c.Reset(); !errors.Is(err, ErrLockedCollection) {
		t.Fatalf("expected ErrLockedCollection, got %v", err)
	}
	if err := c.Remove(0); !errors.Is(err, ErrLockedCollection) {
		t.Fatalf("expected ErrLockedCollection, got %v", err)
	}
	if got := c.ByClocktick(1); len(got) != 1 {
		t.Fatalf("lookup on a locked collection returned %d elements", len(got))
	}
}

func TestCollectionResetLikeNew(t *testing.T) {
	c := NewCollection[CaloTP]("calo TPs")
	addCaloTP(t, c, 1, 0, 1)
	addCaloTP(t, c, 2, 1, 1)
	mustLock(t, c)
	if err := c.Unlock(); err != nil {
		t.Fatal(err)
	}
	if err := c.Reset(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c, NewCollection[CaloTP]("calo TPs")) {
		t.Fatalf("reset collection differs from a new one: %+v", c)
	}
	if _, _, err := c.ClocktickRange(); !errors.Is(err, ErrEmptyCollection) {
		t.Fatalf("expected ErrEmptyCollection, got %v", err)
	}
}

func TestCollectionLookups(t *testing.T) {
	c := NewCollection[CaloTP]("calo TPs")
	addCaloTP(t, c, 7, 0, 1)
	addCaloTP(t, c, 3, 1, 1)
	addCaloTP(t, c, 7, 1, 4)
	addCaloTP(t, c, 5, 1, 4)

	if got := c.ByClocktick(7); len(got) != 2 {
		t.Fatalf("ByClocktick(7) = %d elements", len(got))
	}
	if got := c.ByClocktickAndCrate(7, 1); len(got) != 1 || got[0].ElecID.Board() != 4 {
		t.Fatalf("ByClocktickAndCrate(7, 1) = %v", got)
	}
	if got := c.ByPrefix(NewAddress(ElecCaloFEB, 1, 4)); len(got) != 2 {
		t.Fatalf("ByPrefix = %d elements", len(got))
	}
	first, last, err := c.ClocktickRange()
	if err != nil || first != 3 || last != 7 {
		t.Fatalf("ClocktickRange = %d %d %v", first, last, err)
	}
	if ticks := c.Clockticks(); !reflect.DeepEqual(ticks, []int{3, 5, 7}) {
		t.Fatalf("Clockticks = %v", ticks)
	}
}
