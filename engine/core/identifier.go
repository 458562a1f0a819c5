package core

import (
	"github.com/cockroachdb/errors"
)

// IDAllocator hands out the lowest free integer id and remembers its owner.
type IDAllocator struct {
	owners []interface{}
}

func NewIDAllocator(initialCapacity int) *IDAllocator {
	return &IDAllocator{
		owners: make([]interface{}, initialCapacity),
	}
}

func (a *IDAllocator) Acquire(owner interface{}) uint32 {
	for i := range a.owners {
		// Existing free spot. Take it.
		if a.owners[i] == nil {
			a.owners[i] = owner
			return uint32(i)
		}
	}

	// No existing free slots, push one. The id is the new last index.
	a.owners = append(a.owners, owner)
	return uint32(len(a.owners) - 1)
}

func (a *IDAllocator) Release(id uint32) error {
	if int(id) >= len(a.owners) {
		return errors.Wrapf(ErrNotFound, "identifier %d out of range (max=%d)", id, len(a.owners))
	}
	// Just zero out the entry, making it available for use.
	a.owners[id] = nil
	return nil
}

func (a *IDAllocator) Owner(id uint32) interface{} {
	if int(id) >= len(a.owners) {
		return nil
	}
	return a.owners[id]
}
