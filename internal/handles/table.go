// Package handles implements the per-context handle table.
//
// A handle packs a slot index (low 32 bits), a generation (next 24 bits) and
// a context tag (top 8 bits). Index 0 is never used, so the zero handle is
// always invalid. Slots below the reserved mark hold immortal constants.
package handles

import (
	"fmt"
	"sync"

	"github.com/reglet-dev/reglet-abi/domain/errors"
)

// DefaultLimit is the default maximum number of live handles per table.
const DefaultLimit = 1 << 20

const (
	indexBits = 32
	genBits   = 24
	genMask   = 1<<genBits - 1
	tagShift  = indexBits + genBits
)

// Kind distinguishes what a table slot holds.
type Kind uint8

// Slot kinds.
const (
	KindFree Kind = iota
	KindObject
	KindListBuilder
	KindTupleBuilder
	KindTracker
	KindField
)

func (k Kind) String() string {
	switch k {
	case KindFree:
		return "free"
	case KindObject:
		return "object"
	case KindListBuilder:
		return "list builder"
	case KindTupleBuilder:
		return "tuple builder"
	case KindTracker:
		return "tracker"
	case KindField:
		return "field"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

type entry struct {
	value  any
	origin string
	gen    uint32
	kind   Kind
}

// Table maps handles to values. The mutex guards table structure only; values
// are handed out and used without holding it.
type Table struct {
	entries  []entry
	free     []uint32
	mu       sync.Mutex
	resource string
	live     int
	limit    int
	reserved int
	tag      uint8
	debug    bool
}

// Option configures a Table.
type Option func(*Table)

// WithTag sets the context tag stamped into every handle.
func WithTag(tag uint8) Option {
	return func(t *Table) {
		t.tag = tag
	}
}

// WithLimit caps the number of live, non-immortal entries.
func WithLimit(n int) Option {
	return func(t *Table) {
		if n > 0 {
			t.limit = n
		}
	}
}

// WithDebug enables generation and tag checks and records the operation that
// created each handle.
func WithDebug(enabled bool) Option {
	return func(t *Table) {
		t.debug = enabled
	}
}

// WithResource names the table in MemoryError reports.
func WithResource(name string) Option {
	return func(t *Table) {
		t.resource = name
	}
}

// New creates an empty table.
func New(opts ...Option) *Table {
	t := &Table{
		entries:  make([]entry, 1, 64), // index 0 is never handed out
		limit:    DefaultLimit,
		resource: "handles",
	}
	for _, opt := range opts {
		opt(t)
	}
	t.reserved = 1
	return t
}

// Tag returns the context tag of the table.
func (t *Table) Tag() uint8 {
	return t.tag
}

// Debug reports whether debug checks are enabled.
func (t *Table) Debug() bool {
	return t.debug
}

func (t *Table) encode(idx uint32, gen uint32) uint64 {
	return uint64(t.tag)<<tagShift | uint64(gen&genMask)<<indexBits | uint64(idx)
}

// Decode splits a handle into index, generation and tag.
func Decode(h uint64) (idx uint32, gen uint32, tag uint8) {
	return uint32(h), uint32(h>>indexBits) & genMask, uint8(h >> tagShift)
}

// Reserve stores an immortal value and returns its handle. Reservations must
// happen before the first Alloc.
func (t *Table) Reserve(kind Kind, v any) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.entries) != t.reserved {
		panic("handles: Reserve after Alloc")
	}
	idx := uint32(len(t.entries))
	t.entries = append(t.entries, entry{value: v, kind: kind, gen: 1, origin: "constant"})
	t.reserved++
	return t.encode(idx, 1)
}

// Alloc stores v and returns a fresh handle. It fails with *errors.MemoryError
// once the live limit is reached.
func (t *Table) Alloc(kind Kind, v any, origin string) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.live >= t.limit {
		return 0, &errors.MemoryError{Resource: t.resource, Requested: 1, Current: t.live, Limit: t.limit}
	}

	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.entries))
		t.entries = append(t.entries, entry{})
	}

	e := &t.entries[idx]
	e.gen = (e.gen + 1) & genMask
	if e.gen == 0 {
		e.gen = 1
	}
	e.kind = kind
	e.value = v
	if t.debug {
		e.origin = origin
	}
	t.live++
	return t.encode(idx, e.gen), nil
}

// check returns the entry index for h or panics with a ContractViolation.
// Callers hold t.mu.
func (t *Table) check(h uint64, want Kind, op string) uint32 {
	if h == 0 {
		panic(errors.Violation(op, h, "null %s", want))
	}
	idx, gen, tag := Decode(h)
	if int(idx) >= len(t.entries) {
		panic(errors.Violation(op, h, "unknown %s", want))
	}
	e := &t.entries[idx]
	if e.kind == KindFree {
		panic(errors.Violation(op, h, "%s already closed", want))
	}
	if t.debug {
		if tag != t.tag {
			panic(errors.Violation(op, h, "%s belongs to another context (tag %d, expected %d)", want, tag, t.tag))
		}
		if gen != e.gen {
			panic(errors.Violation(op, h, "stale %s (generation %d, current %d)", want, gen, e.gen))
		}
	}
	if want != KindFree && e.kind != want {
		panic(errors.Violation(op, h, "expected %s, got %s", want, e.kind))
	}
	return idx
}

// Get returns the value behind h. It panics if h is not a live handle of the
// wanted kind.
func (t *Table) Get(h uint64, want Kind, op string) any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries[t.check(h, want, op)].value
}

// Set replaces the value behind a live handle.
func (t *Table) Set(h uint64, want Kind, v any, op string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[t.check(h, want, op)].value = v
}

// IsImmortal reports whether h refers to a reserved constant.
func (t *Table) IsImmortal(h uint64) bool {
	idx, _, _ := Decode(h)
	return idx != 0 && int(idx) < t.reserved
}

// Valid reports whether h is currently live, without panicking.
func (t *Table) Valid(h uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, gen, tag := Decode(h)
	if idx == 0 || int(idx) >= len(t.entries) || tag != t.tag {
		return false
	}
	e := t.entries[idx]
	return e.kind != KindFree && e.gen == gen
}

// Release frees h and returns the value it held. Releasing an immortal
// constant is a no-op that returns immortal=true, or a contract violation in
// debug mode.
func (t *Table) Release(h uint64, want Kind, op string) (v any, immortal bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.check(h, want, op)
	if int(idx) < t.reserved {
		if t.debug {
			panic(errors.Violation(op, h, "constant handles are never closed"))
		}
		return t.entries[idx].value, true
	}

	e := &t.entries[idx]
	v = e.value
	e.value = nil
	e.kind = KindFree
	e.origin = ""
	t.free = append(t.free, idx)
	t.live--
	return v, false
}

// Live returns the number of live, non-immortal entries.
func (t *Table) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

// Limit returns the live entry cap.
func (t *Table) Limit() int {
	return t.limit
}

// Leak describes an entry still live at shutdown.
type Leak struct {
	Value  any
	Origin string
	Handle uint64
	Kind   Kind
}

// Open lists every live, non-immortal entry in index order.
func (t *Table) Open() []Leak {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Leak
	for i := t.reserved; i < len(t.entries); i++ {
		e := t.entries[i]
		if e.kind == KindFree {
			continue
		}
		out = append(out, Leak{
			Handle: t.encode(uint32(i), e.gen),
			Kind:   e.kind,
			Value:  e.value,
			Origin: e.origin,
		})
	}
	return out
}

// CloseAll releases every live entry and hands each value to release,
// outside the lock, in index order. Entries created by release itself are
// closed too.
func (t *Table) CloseAll(release func(l Leak)) int {
	n := 0
	for {
		open := t.Open()
		if len(open) == 0 {
			return n
		}
		for _, l := range open {
			if !t.Valid(l.Handle) {
				continue
			}
			t.Release(l.Handle, l.Kind, "CloseAll")
			n++
			if release != nil {
				release(l)
			}
		}
	}
}
