// room owns the per-session game rooms and the process-wide registry that
// creates, resolves and evicts them.
package room

import (
	"errors"
	"sync"
	"time"

	"github.com/wfunc/yatzyserver/game"
	"github.com/wfunc/yatzyserver/logger"
	"github.com/wfunc/yatzyserver/session"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	// ErrInternal is reported when an action panics mid-flight. The state
	// installed before the action stays in place.
	ErrInternal = errors.New("internal error")
)

// Room 是游戏房间的核心结构: an immutable identity plus the exclusively
// owned game state. All state access is serialized by the room mutex.
type Room struct {
	ID        string
	Code      string
	CreatedAt time.Time

	state       *game.State
	sessions    map[string]*session.Session
	lastActive  time.Time
	broadcaster Broadcaster
	mutex       sync.Mutex
	playerMutex sync.RWMutex
}

func NewRoom(id, code string, broadcaster Broadcaster) *Room {
	now := time.Now()
	return &Room{
		ID:          id,
		Code:        code,
		CreatedAt:   now,
		state:       game.NewState(id),
		sessions:    make(map[string]*session.Session),
		lastActive:  now,
		broadcaster: broadcaster,
	}
}

// Update applies one action to the game state as an atomic unit. The action
// runs against a clone which is installed only on success, so a rejected or
// panicking action leaves the visible state untouched.
func (r *Room) Update(fn func(st *game.State) error) (st *game.State, err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	defer func() {
		if p := recover(); p != nil {
			logger.Log.Errorf("panic applying action in room %s: %v", r.Code, p)
			err = ErrInternal
		}
	}()

	next := r.state.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.state = next
	r.lastActive = time.Now()
	return next, nil
}

// State returns the current game state. Installed states are never mutated
// again, so the snapshot is safe to marshal without holding the room lock.
func (r *Room) State() *game.State {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.state
}

// LastActive reports when the room last accepted an action.
func (r *Room) LastActive() time.Time {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.lastActive
}

// AddSession 添加一个玩家连接到房间
func (r *Room) AddSession(s *session.Session) {
	r.playerMutex.Lock()
	defer r.playerMutex.Unlock()
	r.sessions[s.ID] = s
	s.RoomCode = r.Code
}

// RemoveSession 从房间移除一个玩家连接
func (r *Room) RemoveSession(sessionID string) {
	r.playerMutex.Lock()
	defer r.playerMutex.Unlock()
	if s, exists := r.sessions[sessionID]; exists {
		s.RoomCode = ""
		delete(r.sessions, sessionID)
	}
}

// GetSessions returns a slice of all sessions in the room (thread-safe).
func (r *Room) GetSessions() []*session.Session {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()

	sessions := make([]*session.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// HasSession reports whether the connection is still a member of this room.
func (r *Room) HasSession(sessionID string) bool {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()
	_, exists := r.sessions[sessionID]
	return exists
}

// MemberCount returns the number of connected members.
func (r *Room) MemberCount() int {
	r.playerMutex.RLock()
	defer r.playerMutex.RUnlock()
	return len(r.sessions)
}

// Broadcast sends a message to all members of the room.
func (r *Room) Broadcast(msgID uint16, data []byte) error {
	return r.broadcaster.BroadcastToRoom(r.Code, msgID, data)
}
