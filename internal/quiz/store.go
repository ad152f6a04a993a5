package quiz

import "sync"

// Store maps a Telegram chat ID to its Session. Implementations must be safe
// for concurrent use across chats without serializing unrelated chats.
type Store interface {
	Get(chatID int64) (*Session, bool)
	Put(chatID int64, s *Session)
	Delete(chatID int64)
	Exists(chatID int64) bool
}

const shardCount = 32

type shard struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// MemoryStore is the process-lifetime Store. Sharded so that traffic on one
// chat never contends with traffic on another; bounded by the number of
// active conversations since sessions are deleted on replacement.
type MemoryStore struct {
	shards [shardCount]shard
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i].sessions = make(map[int64]*Session)
	}
	return s
}

func (m *MemoryStore) shardFor(chatID int64) *shard {
	return &m.shards[uint64(chatID)%shardCount]
}

func (m *MemoryStore) Get(chatID int64) (*Session, bool) {
	sh := m.shardFor(chatID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	s, ok := sh.sessions[chatID]
	return s, ok
}

func (m *MemoryStore) Put(chatID int64, s *Session) {
	sh := m.shardFor(chatID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.sessions[chatID] = s
}

func (m *MemoryStore) Delete(chatID int64) {
	sh := m.shardFor(chatID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.sessions, chatID)
}

func (m *MemoryStore) Exists(chatID int64) bool {
	sh := m.shardFor(chatID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	_, ok := sh.sessions[chatID]
	return ok
}
