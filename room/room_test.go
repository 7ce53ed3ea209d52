package room

import (
	"errors"
	"net"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/wfunc/yatzyserver/game"
	"github.com/wfunc/yatzyserver/logger"
	"github.com/wfunc/yatzyserver/network"
	"github.com/wfunc/yatzyserver/session"
)

func init() {
	logger.InitDevelopment()
}

// MockBroadcaster is a test double for the Broadcaster interface.
type MockBroadcaster struct{}

func (m *MockBroadcaster) BroadcastToRoom(code string, msgID uint16, data []byte) error {
	return nil
}

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct{}

func (m *MockConnection) Send(msgID uint16, data []byte) error       { return nil }
func (m *MockConnection) SendJSON(msgID uint16, v interface{}) error { return nil }
func (m *MockConnection) Close() error                               { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                       { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)        {}
func (m *MockConnection) ReadPacket() (*network.Packet, error)       { return nil, nil }

// newTestSession creates a dummy session for testing purposes.
func newTestSession(id string) *session.Session {
	return session.NewSession(id, &MockConnection{})
}

func TestRegistry_CreateRoom(t *testing.T) {
	reg := NewRegistry()
	sess := newTestSession("conn-1")

	r, prior, err := reg.CreateRoom(sess, "Alice", "🎲", &MockBroadcaster{})
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if prior != nil {
		t.Error("expected no prior membership on a fresh connection")
	}
	if len(r.Code) != codeLength {
		t.Errorf("code %q has length %d, want %d", r.Code, len(r.Code), codeLength)
	}

	st := r.State()
	if st.Phase != game.PhaseWaiting {
		t.Errorf("new room phase = %s, want waiting", st.Phase)
	}
	if len(st.Players) != 1 {
		t.Fatalf("expected 1 player, got %d", len(st.Players))
	}
	if st.Players[0].Name != "Alice" || st.Players[0].ID != "conn-1" {
		t.Errorf("unexpected creator player: %+v", st.Players[0])
	}

	got, exists := reg.Get(r.Code)
	if !exists || got != r {
		t.Error("Get should resolve the created room by code")
	}
	if reg.Count() != 1 {
		t.Errorf("Count = %d, want 1", reg.Count())
	}
}

func TestRegistry_CreateRoom_ReplacesPriorMembership(t *testing.T) {
	reg := NewRegistry()
	sess := newTestSession("conn-1")

	first, _, err := reg.CreateRoom(sess, "Alice", "", &MockBroadcaster{})
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	second, prior, err := reg.CreateRoom(sess, "Alice", "", &MockBroadcaster{})
	if err != nil {
		t.Fatalf("second CreateRoom failed: %v", err)
	}
	if prior == nil {
		t.Fatal("expected the prior membership to be torn down")
	}
	if prior.Code != first.Code || !prior.Evicted {
		t.Errorf("prior room %s should have been evicted, got %+v", first.Code, prior)
	}
	if _, exists := reg.Get(first.Code); exists {
		t.Error("first room still registered")
	}
	if r, exists := reg.RoomBySession("conn-1"); !exists || r != second {
		t.Error("connection not bound to the new room")
	}
}

func TestRegistry_JoinRoom(t *testing.T) {
	reg := NewRegistry()
	creator := newTestSession("conn-1")
	joiner := newTestSession("conn-2")

	r, _, err := reg.CreateRoom(creator, "Alice", "", &MockBroadcaster{})
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	// Codes are case-insensitive for joiners.
	joined, _, err := reg.JoinRoom(joiner, strings.ToLower(r.Code), "Bob", "")
	if err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	if joined != r {
		t.Error("joined a different room")
	}

	st := r.State()
	if st.Phase != game.PhaseRolling {
		t.Errorf("phase = %s, want rolling after second player", st.Phase)
	}
	if len(st.Players) != 2 {
		t.Errorf("expected 2 players, got %d", len(st.Players))
	}
	if r.MemberCount() != 2 {
		t.Errorf("member count = %d, want 2", r.MemberCount())
	}
}

func TestRegistry_JoinRoom_Errors(t *testing.T) {
	reg := NewRegistry()
	creator := newTestSession("conn-1")
	joiner := newTestSession("conn-2")
	third := newTestSession("conn-3")

	r, _, err := reg.CreateRoom(creator, "Alice", "", &MockBroadcaster{})
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	if _, _, err := reg.JoinRoom(joiner, "ZZZZZ", "Bob", ""); err != ErrRoomNotFound {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}

	if _, _, err := reg.JoinRoom(creator, r.Code, "Alice", ""); err != game.ErrAlreadyJoined {
		t.Errorf("expected ErrAlreadyJoined, got %v", err)
	}

	if _, _, err := reg.JoinRoom(joiner, r.Code, "Bob", ""); err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	if _, _, err := reg.JoinRoom(third, r.Code, "Carol", ""); err != game.ErrRoomFull {
		t.Errorf("expected ErrRoomFull, got %v", err)
	}
}

func TestRegistry_LeaveEvictsEmptyRoom(t *testing.T) {
	reg := NewRegistry()
	creator := newTestSession("conn-1")
	joiner := newTestSession("conn-2")

	r, _, _ := reg.CreateRoom(creator, "Alice", "", &MockBroadcaster{})
	reg.JoinRoom(joiner, r.Code, "Bob", "")

	res := reg.Leave("conn-2")
	if res == nil {
		t.Fatal("expected a leave result")
	}
	if res.Evicted {
		t.Error("room with a remaining member should not be evicted")
	}
	if len(res.Remaining) != 1 || res.Remaining[0].ID != "conn-1" {
		t.Errorf("unexpected remaining members: %+v", res.Remaining)
	}
	if res.State.Phase != game.PhaseFinished || !res.State.OpponentLeft {
		t.Errorf("mid-game departure should finish the game, got phase %s", res.State.Phase)
	}

	res = reg.Leave("conn-1")
	if res == nil || !res.Evicted {
		t.Fatal("expected the empty room to be evicted")
	}
	if _, exists := reg.Get(r.Code); exists {
		t.Error("evicted room still resolvable")
	}
	if _, _, err := reg.JoinRoom(newTestSession("conn-3"), r.Code, "Carol", ""); err != ErrRoomNotFound {
		t.Errorf("join after eviction should fail with ErrRoomNotFound, got %v", err)
	}
}

func TestRegistry_LeaveWithoutMembership(t *testing.T) {
	reg := NewRegistry()
	if res := reg.Leave("nobody"); res != nil {
		t.Errorf("expected nil result, got %+v", res)
	}
}

func TestRoom_UpdateRejectedActionKeepsState(t *testing.T) {
	r := NewRoom("id-1", "AAAAA", &MockBroadcaster{})
	r.Update(func(st *game.State) error {
		return st.AddPlayer(game.NewPlayer("alice", "Alice", ""))
	})

	before := r.State()
	_, err := r.Update(func(st *game.State) error {
		st.Players[0].Name = "Mallory"
		return errors.New("rejected")
	})
	if err == nil {
		t.Fatal("expected the action error to propagate")
	}
	if !reflect.DeepEqual(before, r.State()) {
		t.Error("rejected action left a visible mutation")
	}
}

func TestRoom_UpdatePanicIsIsolated(t *testing.T) {
	r := NewRoom("id-1", "AAAAA", &MockBroadcaster{})
	r.Update(func(st *game.State) error {
		return st.AddPlayer(game.NewPlayer("alice", "Alice", ""))
	})

	before := r.State()
	_, err := r.Update(func(st *game.State) error {
		st.Players[0].Name = "Mallory"
		panic("boom")
	})
	if err != ErrInternal {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if !reflect.DeepEqual(before, r.State()) {
		t.Error("panicking action left a visible mutation")
	}
}

func TestGenerateCode_Alphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := generateCode()
		if len(code) != codeLength {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		for _, c := range code {
			found := false
			for _, l := range codeLetters {
				if c == l {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("code %q contains %q outside the alphabet", code, c)
			}
		}
	}
}

func TestRegistry_CreateRoom_RegeneratesOnCodeCollision(t *testing.T) {
	orig := generateCode
	defer func() { generateCode = orig }()

	// Second draw collides with the first room's code; third is free.
	draws := []string{"AAAAA", "AAAAA", "BBBBB"}
	generateCode = func() string {
		code := draws[0]
		draws = draws[1:]
		return code
	}

	reg := NewRegistry()
	first, _, err := reg.CreateRoom(newTestSession("conn-1"), "Alice", "", &MockBroadcaster{})
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if first.Code != "AAAAA" {
		t.Fatalf("first code = %q, want AAAAA", first.Code)
	}

	second, _, err := reg.CreateRoom(newTestSession("conn-2"), "Bob", "", &MockBroadcaster{})
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if second.Code != "BBBBB" {
		t.Errorf("second code = %q, want BBBBB after regeneration", second.Code)
	}
	if len(draws) != 0 {
		t.Errorf("%d draws left unconsumed; the colliding draw was not retried", len(draws))
	}

	got, exists := reg.Get("AAAAA")
	if !exists || got != first {
		t.Error("first room no longer resolvable by its code")
	}
	if st := first.State(); len(st.Players) != 1 || st.Players[0].ID != "conn-1" {
		t.Errorf("first room state disturbed by the collision: %+v", st)
	}
}

func TestRegistry_JoinRoom_RejectedJoinKeepsPriorMembership(t *testing.T) {
	reg := NewRegistry()

	full, _, _ := reg.CreateRoom(newTestSession("conn-1"), "Alice", "", &MockBroadcaster{})
	if _, _, err := reg.JoinRoom(newTestSession("conn-2"), full.Code, "Bob", ""); err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}

	third := newTestSession("conn-3")
	own, _, err := reg.CreateRoom(third, "Carol", "", &MockBroadcaster{})
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	_, prior, err := reg.JoinRoom(third, full.Code, "Carol", "")
	if err != game.ErrRoomFull {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if prior != nil {
		t.Errorf("rejected join tore down the prior membership: %+v", prior)
	}
	if r, exists := reg.RoomBySession("conn-3"); !exists || r != own {
		t.Error("caller no longer bound to their own room after a rejected join")
	}
	if own.MemberCount() != 1 {
		t.Errorf("own room member count = %d, want 1", own.MemberCount())
	}
}
