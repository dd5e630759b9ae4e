package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/helpcar/quotechat/internal/logging"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/session"
)

// streamBuffer is the number of views a slow client may lag behind before views are dropped.
const streamBuffer = 16

// StreamManager fans session views out to SSE connections. A session gets one listener
// while at least one connection watches it.
type StreamManager struct {
	mu          sync.Mutex
	subscribers map[string]map[chan string]struct{}
	detach      map[string]func()
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
		detach:      make(map[string]func()),
		logger:      logger,
	}
}

// Subscribe returns a channel of JSON encoded views for s and a cancel function that
// must be called when the connection ends.
func (sm *StreamManager) Subscribe(s *session.Session) (<-chan string, func()) {
	id := s.ID()
	ch := make(chan string, streamBuffer)

	sm.mu.Lock()
	subs, ok := sm.subscribers[id]
	if !ok {
		subs = make(map[chan string]struct{})
		sm.subscribers[id] = subs
		sm.detach[id] = s.Subscribe(func(v domain.ConversationView) {
			sm.Broadcast(id, v)
		})
	}
	subs[ch] = struct{}{}
	sm.mu.Unlock()

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		subs, ok := sm.subscribers[id]
		if !ok {
			return
		}
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(sm.subscribers, id)
			if detach := sm.detach[id]; detach != nil {
				detach()
			}
			delete(sm.detach, id)
		}
	}
}

// Broadcast sends v to every connection watching the session.
func (sm *StreamManager) Broadcast(sessionID string, v domain.ConversationView) {
	payload, err := json.Marshal(v)
	if err != nil {
		sm.logger.Error("SSE: failed to encode view", "session_id", sessionID, "error", err)
		return
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- string(payload):
		default:
			sm.logger.Warn("SSE: client buffer full, dropping view", "session_id", sessionID)
		}
	}
}

// Watchers returns the number of open connections for a session.
func (sm *StreamManager) Watchers(sessionID string) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.subscribers[sessionID])
}
