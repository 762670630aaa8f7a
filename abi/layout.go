package abi

import (
	"fmt"
	"reflect"
	"sync"
)

// FieldKind classifies an entry of the Context table.
type FieldKind string

// Field kinds.
const (
	KindHeader FieldKind = "header"
	KindConst  FieldKind = "const"
	KindSlot   FieldKind = "slot"
)

// SlotInfo describes one entry of the Context table.
type SlotInfo struct {
	Name   string    `json:"name" cbor:"1,keyasint"`
	Kind   FieldKind `json:"kind" cbor:"2,keyasint"`
	Type   string    `json:"type" cbor:"3,keyasint"`
	Index  int       `json:"index" cbor:"4,keyasint"`
	Since  int       `json:"since" cbor:"5,keyasint"`
	Offset uintptr   `json:"-" cbor:"-"`
}

// versionStarts names the first field each version appended.
var versionStarts = []struct {
	version int
	first   string
}{
	{Version1, "Version"},
	{Version2, "NotImplemented"},
}

var (
	layoutOnce sync.Once
	catalogue  []SlotInfo
)

func buildCatalogue() []SlotInfo {
	t := reflect.TypeOf(Context{})
	handleType := reflect.TypeOf(Null)

	out := make([]SlotInfo, 0, t.NumField())
	since := 0
	next := 0
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if next < len(versionStarts) && versionStarts[next].first == f.Name {
			since = versionStarts[next].version
			next++
		}

		kind := KindHeader
		switch {
		case f.Type == handleType:
			kind = KindConst
		case f.Type.Kind() == reflect.Func:
			kind = KindSlot
		}

		out = append(out, SlotInfo{
			Name:   f.Name,
			Kind:   kind,
			Type:   f.Type.String(),
			Index:  i,
			Since:  since,
			Offset: f.Offset,
		})
	}
	return out
}

func all() []SlotInfo {
	layoutOnce.Do(func() { catalogue = buildCatalogue() })
	return catalogue
}

// Layout returns every field present in a table of the given version, in
// declaration order.
func Layout(version int) ([]SlotInfo, error) {
	if version < Version1 || version > CurrentVersion {
		return nil, fmt.Errorf("abi: unknown context version %d (supported %d..%d)", version, Version1, CurrentVersion)
	}
	var out []SlotInfo
	for _, s := range all() {
		if s.Since <= version {
			out = append(out, s)
		}
	}
	return out, nil
}

// Lookup finds a field by name.
func Lookup(name string) (SlotInfo, bool) {
	for _, s := range all() {
		if s.Name == name {
			return s, true
		}
	}
	return SlotInfo{}, false
}

// Offsets maps every field name to its byte offset in Context.
func Offsets() map[string]uintptr {
	out := make(map[string]uintptr, len(all()))
	for _, s := range all() {
		out[s.Name] = s.Offset
	}
	return out
}

// Has reports whether the table advertises the named field.
func (c *Context) Has(name string) bool {
	s, ok := Lookup(name)
	return ok && s.Since <= c.Version
}
