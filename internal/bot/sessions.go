package bot

import "sync"

// SessionStore keeps per-chat sessions. The map is guarded for concurrent
// chats; a single session is only ever mutated by the goroutine serving its
// chat queue, so no field-level locking is needed.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*Session),
	}
}

// Get returns the session for a chat, creating an idle one on first use.
func (s *SessionStore) Get(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		sess = &Session{Step: StepIdle, Data: make(map[string]string)}
		s.sessions[chatID] = sess
	}

	return sess
}

// Clear drops the session entirely; the next Get starts from idle with
// empty data.
func (s *SessionStore) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, chatID)
}
