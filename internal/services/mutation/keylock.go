package mutation

import (
	"slices"
	"sync"
)

// Lock keys. Column operations share one key since they renumber siblings.
const ColumnsKey = "columns"

func ProjectKey(id string) string { return "project:" + id }

func LabelKey(id string) string { return "label:" + id }

// ColumnKey guards one column's membership: project moves hold it shared,
// deleting the column holds it exclusively.
func ColumnKey(id string) string { return "column:" + id }

type refMutex struct {
	sync.RWMutex
	refs int
}

type heldKey struct {
	key    string
	m      *refMutex
	shared bool
}

// keyLocks serializes holders of the same key. Entries are dropped once
// nobody holds or waits for them.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*refMutex)}
}

// lock acquires all keys in sorted order and returns the release func.
// A key listed in both sets is taken exclusively.
func (k *keyLocks) lock(exclusive, shared []string) func() {
	mode := make(map[string]bool, len(exclusive)+len(shared))
	for _, key := range shared {
		mode[key] = true
	}
	for _, key := range exclusive {
		mode[key] = false
	}
	keys := make([]string, 0, len(mode))
	for key := range mode {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	held := make([]heldKey, 0, len(keys))
	for _, key := range keys {
		k.mu.Lock()
		m, ok := k.locks[key]
		if !ok {
			m = &refMutex{}
			k.locks[key] = m
		}
		m.refs++
		k.mu.Unlock()

		if mode[key] {
			m.RLock()
		} else {
			m.Lock()
		}
		held = append(held, heldKey{key: key, m: m, shared: mode[key]})
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			h := held[i]
			if h.shared {
				h.m.RUnlock()
			} else {
				h.m.Unlock()
			}
			k.mu.Lock()
			h.m.refs--
			if h.m.refs == 0 {
				delete(k.locks, h.key)
			}
			k.mu.Unlock()
		}
	}
}

func (k *keyLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
