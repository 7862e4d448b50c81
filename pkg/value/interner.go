package value

// Interner is a content-addressed table of strings: intern(bytes) always
// returns the same *ObjString for the same bytes, for the lifetime of the
// Interner. Two interned strings are equal iff their identities are —
// every place in this codebase that compares strings for equality (VM
// OP_EQUAL, map keys in the global table) relies on that.
//
// Implemented as open addressing (linear probing) over a power-of-two
// table, growing whenever the load factor would exceed 0.75, the same
// bound the spec calls out. Hashing is 32-bit FNV-1a, computed once per
// string and cached on the ObjString so the table never has to rehash.
type Interner struct {
	entries []*ObjString
	count   int
	head    *ObjString // most recently interned string, threaded via Header.Next
}

const internerLoadFactor = 0.75

// NewInterner returns an empty string interner with a small initial table.
func NewInterner() *Interner {
	return &Interner{entries: make([]*ObjString, 8)}
}

// fnv1a32 hashes s with 32-bit FNV-1a.
func fnv1a32(s string) uint32 {
	const offsetBasis uint32 = 2166136261
	const prime uint32 = 16777619
	h := offsetBasis
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}

// Intern returns the canonical *ObjString for s, allocating a new one only
// if s has never been interned before.
func (in *Interner) Intern(s string) *ObjString {
	hash := fnv1a32(s)
	if found := in.find(s, hash); found != nil {
		return found
	}
	if float64(in.count+1) > internerLoadFactor*float64(len(in.entries)) {
		in.grow()
	}
	obj := &ObjString{Chars: s, Hash: hash}
	in.insert(obj)
	in.count++
	return obj
}

func (in *Interner) find(s string, hash uint32) *ObjString {
	if len(in.entries) == 0 {
		return nil
	}
	mask := uint32(len(in.entries) - 1)
	idx := hash & mask
	for {
		entry := in.entries[idx]
		if entry == nil {
			return nil
		}
		if entry.Hash == hash && entry.Chars == s {
			return entry
		}
		idx = (idx + 1) & mask
	}
}

func (in *Interner) insert(obj *ObjString) {
	mask := uint32(len(in.entries) - 1)
	idx := obj.Hash & mask
	for in.entries[idx] != nil {
		idx = (idx + 1) & mask
	}
	in.entries[idx] = obj
	obj.Header.Next = in.head
	in.head = obj
}

func (in *Interner) grow() {
	old := in.entries
	in.entries = make([]*ObjString, len(old)*2)
	for _, obj := range old {
		if obj == nil {
			continue
		}
		mask := uint32(len(in.entries) - 1)
		idx := obj.Hash & mask
		for in.entries[idx] != nil {
			idx = (idx + 1) & mask
		}
		in.entries[idx] = obj
	}
}

// Concat interns the concatenation of a and b without ever materializing an
// intermediate object that outlives the call: the "ADD with two strings"
// opcode handler builds the combined bytes once and calls Intern on the
// result, same as this helper.
func (in *Interner) Concat(a, b *ObjString) *ObjString {
	return in.Intern(a.Chars + b.Chars)
}

// Head returns the most recently interned string, the entry point into the
// interner's own object chain. Interned strings are the only objects
// threaded onto any chain; the VM keeps no general object registry.
func (in *Interner) Head() *ObjString { return in.head }
