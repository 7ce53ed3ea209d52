package broadcast

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/yatzyserver/logger"
	"github.com/wfunc/yatzyserver/network"
	"github.com/wfunc/yatzyserver/room"
	"github.com/wfunc/yatzyserver/session"
)

func init() {
	logger.InitDevelopment()
}

// MockConnection records every message ID it was asked to send.
type MockConnection struct {
	sent []uint16
}

func (m *MockConnection) Send(msgID uint16, data []byte) error {
	m.sent = append(m.sent, msgID)
	return nil
}

func (m *MockConnection) SendJSON(msgID uint16, v interface{}) error {
	m.sent = append(m.sent, msgID)
	return nil
}

func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestBroadcastToRoom(t *testing.T) {
	registry := room.NewRegistry()
	sessions := session.NewManager()
	b := NewRoomBroadcaster(registry, sessions)

	creatorConn := &MockConnection{}
	joinerConn := &MockConnection{}
	creator := session.NewSession("conn-1", creatorConn)
	joiner := session.NewSession("conn-2", joinerConn)
	sessions.Add(creator)
	sessions.Add(joiner)

	r, _, err := registry.CreateRoom(creator, "Alice", "", b)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if _, _, err := registry.JoinRoom(joiner, r.Code, "Bob", ""); err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}

	if err := b.BroadcastToRoom(r.Code, network.MsgTypeGameState, []byte("{}")); err != nil {
		t.Fatalf("BroadcastToRoom failed: %v", err)
	}

	for name, conn := range map[string]*MockConnection{"creator": creatorConn, "joiner": joinerConn} {
		if len(conn.sent) != 1 || conn.sent[0] != network.MsgTypeGameState {
			t.Errorf("%s received %v, want one game_state", name, conn.sent)
		}
	}
}

func TestBroadcastToRoom_UnknownCode(t *testing.T) {
	b := NewRoomBroadcaster(room.NewRegistry(), session.NewManager())
	if err := b.BroadcastToRoom("ZZZZZ", network.MsgTypeGameState, nil); err != room.ErrRoomNotFound {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestSendToSession(t *testing.T) {
	sessions := session.NewManager()
	b := NewRoomBroadcaster(room.NewRegistry(), sessions)

	conn := &MockConnection{}
	sessions.Add(session.NewSession("conn-1", conn))

	if err := b.SendToSession("conn-1", network.MsgTypeError, []byte("{}")); err != nil {
		t.Fatalf("SendToSession failed: %v", err)
	}
	if len(conn.sent) != 1 || conn.sent[0] != network.MsgTypeError {
		t.Errorf("unexpected sends: %v", conn.sent)
	}

	// Unknown sessions are skipped without error.
	if err := b.SendToSession("ghost", network.MsgTypeError, nil); err != nil {
		t.Errorf("expected nil for unknown session, got %v", err)
	}
}
