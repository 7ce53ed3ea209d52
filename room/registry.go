package room

import (
	"crypto/rand"
	"math/big"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/wfunc/yatzyserver/game"
	"github.com/wfunc/yatzyserver/logger"
	"github.com/wfunc/yatzyserver/session"
)

const (
	codeLength = 5
	// No 0/O/1/I, codes get read aloud.
	codeLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// LeaveResult describes a completed room departure so the caller can notify
// the remaining member and clean up metrics.
type LeaveResult struct {
	Room      *Room
	Code      string
	PlayerID  string
	State     *game.State
	Remaining []*session.Session
	Evicted   bool
}

// Registry is the process-wide mapping from room code to room and from
// connection to room code. It enforces one room membership per connection.
type Registry struct {
	rooms   map[string]*Room  // code -> room
	members map[string]string // session ID -> room code
	mutex   sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:   make(map[string]*Room),
		members: make(map[string]string),
	}
}

// CreateRoom allocates a fresh room in the waiting phase with the creator as
// its single player. Any prior membership of the creating connection is torn
// down first; the returned LeaveResult (nil if there was none) tells the
// caller who to notify about it.
func (reg *Registry) CreateRoom(sess *session.Session, name, avatar string, broadcaster Broadcaster) (*Room, *LeaveResult, error) {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	prior := reg.leaveLocked(sess.ID)

	code := reg.newCodeLocked()
	r := NewRoom(uuid.New().String(), code, broadcaster)
	if _, err := r.Update(func(st *game.State) error {
		return st.AddPlayer(game.NewPlayer(sess.ID, name, avatar))
	}); err != nil {
		return nil, prior, err
	}
	r.AddSession(sess)

	reg.rooms[code] = r
	reg.members[sess.ID] = code

	logger.Log.Infof("session %s created room %s", sess.ID, code)
	return r, prior, nil
}

// JoinRoom seats the connection in the room with the given code and starts
// the game. The code is case-insensitive. Prior membership is torn down the
// same way CreateRoom does it.
func (reg *Registry) JoinRoom(sess *session.Session, code, name, avatar string) (*Room, *LeaveResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	r, exists := reg.rooms[code]
	if !exists {
		return nil, nil, ErrRoomNotFound
	}
	if bound, ok := reg.members[sess.ID]; ok && bound == code {
		return nil, nil, game.ErrAlreadyJoined
	}

	// Reject unjoinable rooms before touching the caller's current
	// membership; a failed join must not eject them from their old room.
	st := r.State()
	if len(st.Players) >= game.MaxPlayers {
		return nil, nil, game.ErrRoomFull
	}
	if st.Phase != game.PhaseWaiting {
		return nil, nil, game.ErrGameAlreadyStarted
	}

	prior := reg.leaveLocked(sess.ID)

	if _, err := r.Update(func(st *game.State) error {
		return st.AddPlayer(game.NewPlayer(sess.ID, name, avatar))
	}); err != nil {
		return nil, prior, err
	}
	r.AddSession(sess)
	reg.members[sess.ID] = code

	logger.Log.Infof("session %s joined room %s", sess.ID, code)
	return r, prior, nil
}

// Leave removes the connection from its room, if any. Used for explicit
// leaves and for disconnects alike; the room is evicted the moment its last
// member is gone.
func (reg *Registry) Leave(sessionID string) *LeaveResult {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()
	return reg.leaveLocked(sessionID)
}

func (reg *Registry) leaveLocked(sessionID string) *LeaveResult {
	code, ok := reg.members[sessionID]
	if !ok {
		return nil
	}
	delete(reg.members, sessionID)

	r, exists := reg.rooms[code]
	if !exists {
		return nil
	}

	r.RemoveSession(sessionID)
	st, err := r.Update(func(st *game.State) error {
		st.RemovePlayer(sessionID)
		return nil
	})
	if err != nil {
		st = r.State()
	}

	result := &LeaveResult{
		Room:      r,
		Code:      code,
		PlayerID:  sessionID,
		State:     st,
		Remaining: r.GetSessions(),
	}
	if r.MemberCount() == 0 {
		delete(reg.rooms, code)
		result.Evicted = true
		logger.Log.Infof("room %s evicted", code)
	}
	return result
}

// Get resolves a room by code.
func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()
	r, exists := reg.rooms[strings.ToUpper(code)]
	return r, exists
}

// RoomBySession resolves the room the connection is currently bound to.
func (reg *Registry) RoomBySession(sessionID string) (*Room, bool) {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()
	code, ok := reg.members[sessionID]
	if !ok {
		return nil, false
	}
	r, exists := reg.rooms[code]
	return r, exists
}

// Count returns the number of live rooms.
func (reg *Registry) Count() int {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()
	return len(reg.rooms)
}

// Rooms returns a snapshot of all live rooms.
func (reg *Registry) Rooms() []*Room {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// newCodeLocked draws codes until one is free among the live rooms.
func (reg *Registry) newCodeLocked() string {
	for {
		code := generateCode()
		if _, taken := reg.rooms[code]; !taken {
			return code
		}
	}
}

// generateCode is a variable so tests can force code collisions.
var generateCode = func() string {
	code := make([]byte, codeLength)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(codeLetters))))
		code[i] = codeLetters[n.Int64()]
	}
	return string(code)
}
