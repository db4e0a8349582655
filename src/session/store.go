package session

import (
	"container/list"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultCapacity bounds the number of live sessions when no explicit
// capacity is configured. Sessions beyond it are evicted least recently
// used; entries otherwise live for the process lifetime.
const DefaultCapacity = 1024

// Store owns every session. It is passed explicitly into each entry
// point rather than living as package-level state.
type Store struct {
	mu       sync.Mutex
	capacity int
	index    map[string]*list.Element
	lru      *list.List
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		index:    make(map[string]*list.Element, capacity),
		lru:      list.New(),
	}
}

// GetOrCreate returns the session for id, creating it on first
// reference. A blank id gets a synthesized UUID. The returned id is
// always the effective one.
func (st *Store) GetOrCreate(id string) *Session {
	id = strings.TrimSpace(id)

	st.mu.Lock()
	defer st.mu.Unlock()

	if id != "" {
		if elem, ok := st.index[id]; ok {
			st.lru.MoveToFront(elem)
			return elem.Value.(*Session)
		}
	}
	if id == "" {
		id = uuid.NewString()
	}

	session := newSession(id)
	st.index[id] = st.lru.PushFront(session)

	for st.lru.Len() > st.capacity {
		oldest := st.lru.Back()
		if oldest == nil {
			break
		}
		st.lru.Remove(oldest)
		delete(st.index, oldest.Value.(*Session).ID)
	}
	return session
}

// Get returns an existing session, refreshing its LRU position.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	elem, ok := st.index[id]
	if !ok {
		return nil, false
	}
	st.lru.MoveToFront(elem)
	return elem.Value.(*Session), true
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lru.Len()
}
