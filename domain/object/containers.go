package object

// List is a mutable sequence.
type List struct {
	Header
	Items []Object
}

// Type implements Object.
func (*List) Type() *Type { return ListType }

// NewList returns a list holding new references to items.
func NewList(items ...Object) *List {
	return &List{fresh(), increfItems(items)}
}

// ListFromOwned returns a list that takes over the references in items.
func ListFromOwned(items []Object) *List {
	return &List{fresh(), items}
}

// Append adds a new reference to item.
func (l *List) Append(item Object) {
	l.Items = append(l.Items, Incref(item))
}

// Tuple is an immutable sequence.
type Tuple struct {
	Header
	Items []Object
}

// Type implements Object.
func (*Tuple) Type() *Type { return TupleType }

// NewTuple returns a tuple holding new references to items.
func NewTuple(items ...Object) *Tuple {
	return &Tuple{fresh(), increfItems(items)}
}

// TupleFromOwned returns a tuple that takes over the references in items.
func TupleFromOwned(items []Object) *Tuple {
	return &Tuple{fresh(), items}
}

type dictEntry struct {
	key   Object
	value Object
	hash  int64
}

// Dict is an insertion-ordered hash map.
type Dict struct {
	Header
	index   map[int64][]int
	entries []dictEntry
	n       int
}

// Type implements Object.
func (*Dict) Type() *Type { return DictType }

// NewDict returns an empty dict.
func NewDict() *Dict {
	return &Dict{Header: fresh(), index: make(map[int64][]int)}
}

// Len returns the number of items.
func (d *Dict) Len() int {
	return d.n
}

func (d *Dict) find(key Object) (int, int64, error) {
	h, err := Hash(key)
	if err != nil {
		return -1, 0, err
	}
	for _, i := range d.index[h] {
		e := d.entries[i]
		if e.key == nil {
			continue
		}
		if e.key == key {
			return i, h, nil
		}
		eq, err := CompareBool(e.key, key, EQ)
		if err != nil {
			return -1, h, err
		}
		if eq {
			return i, h, nil
		}
	}
	return -1, h, nil
}

// Get returns the value for key as a borrowed reference.
func (d *Dict) Get(key Object) (Object, bool, error) {
	i, _, err := d.find(key)
	if err != nil || i < 0 {
		return nil, false, err
	}
	return d.entries[i].value, true, nil
}

// Set stores new references to key and value, replacing an existing value.
func (d *Dict) Set(key, value Object) error {
	i, h, err := d.find(key)
	if err != nil {
		return err
	}
	if i >= 0 {
		old := d.entries[i].value
		d.entries[i].value = Incref(value)
		Decref(old)
		return nil
	}
	d.entries = append(d.entries, dictEntry{key: Incref(key), value: Incref(value), hash: h})
	d.index[h] = append(d.index[h], len(d.entries)-1)
	d.n++
	return nil
}

// Delete removes key, failing with KeyError when absent.
func (d *Dict) Delete(key Object) error {
	i, _, err := d.find(key)
	if err != nil {
		return err
	}
	if i < 0 {
		return keyError(key)
	}
	e := d.entries[i]
	d.entries[i] = dictEntry{}
	d.n--
	Decref(e.key)
	Decref(e.value)
	return nil
}

// GetStr looks up a string key without allocating. The result is borrowed.
func (d *Dict) GetStr(key string) Object {
	for _, i := range d.index[hashBytes([]byte(key))] {
		if s, ok := d.entries[i].key.(*Str); ok && s.V == key {
			return d.entries[i].value
		}
	}
	return nil
}

// SetStr stores value under a string key.
func (d *Dict) SetStr(key string, value Object) {
	k := NewStr(key)
	// string keys always hash
	_ = d.Set(k, value)
	Decref(k)
}

// Item is a borrowed key/value pair.
type Item struct {
	Key   Object
	Value Object
}

// Items returns the live entries in insertion order. References are borrowed.
func (d *Dict) Items() []Item {
	out := make([]Item, 0, d.n)
	for _, e := range d.entries {
		if e.key != nil {
			out = append(out, Item{e.key, e.value})
		}
	}
	return out
}

// Clear drops every item.
func (d *Dict) Clear() {
	entries := d.entries
	d.entries = nil
	d.index = make(map[int64][]int)
	d.n = 0
	for _, e := range entries {
		if e.key != nil {
			Decref(e.key)
			Decref(e.value)
		}
	}
}
