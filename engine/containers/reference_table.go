package containers

import (
	"math"
	"strings"

	"github.com/dolthub/swiss"
)

// InvalidHandle marks a reference that does not point at a live slot.
const InvalidHandle uint32 = math.MaxUint32

// Reference is the bookkeeping entry a registry keeps per resource name.
type Reference struct {
	Handle         uint32
	ReferenceCount uint64
	AutoRelease    bool
}

// NotLoaded is the canonical entry for a name that holds no resource.
func NotLoaded() Reference {
	return Reference{Handle: InvalidHandle}
}

func (r Reference) IsLoaded() bool {
	return r.Handle != InvalidHandle
}

// ReferenceTable maps case-insensitive resource names to references. Names never
// stored read back as NotLoaded, the same as a table pre-filled with invalid entries.
type ReferenceTable struct {
	entries *swiss.Map[string, Reference]
}

func NewReferenceTable(capacity uint32) *ReferenceTable {
	return &ReferenceTable{
		entries: swiss.NewMap[string, Reference](capacity),
	}
}

// NormalizeName is the key every lookup goes through.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}

func (t *ReferenceTable) Get(name string) Reference {
	if ref, ok := t.entries.Get(NormalizeName(name)); ok {
		return ref
	}
	return NotLoaded()
}

// Set stores the entry. Entries back in the not-loaded state are dropped so the
// table only grows with live names.
func (t *ReferenceTable) Set(name string, ref Reference) {
	key := NormalizeName(name)
	if !ref.IsLoaded() && ref.ReferenceCount == 0 {
		t.entries.Delete(key)
		return
	}
	t.entries.Put(key, ref)
}

func (t *ReferenceTable) Len() int {
	return t.entries.Count()
}

// Each visits every stored entry until fn returns false.
func (t *ReferenceTable) Each(fn func(name string, ref Reference) bool) {
	t.entries.Iter(func(k string, v Reference) bool {
		return !fn(k, v)
	})
}

// FirstFree returns the index of the first slot for which free reports true.
func FirstFree[T any](slots []T, free func(T) bool) (uint32, bool) {
	for i, s := range slots {
		if free(s) {
			return uint32(i), true
		}
	}
	return InvalidHandle, false
}
