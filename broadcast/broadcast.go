// broadcast fans framed messages out to room members.
package broadcast

import (
	"github.com/wfunc/yatzyserver/room"
	"github.com/wfunc/yatzyserver/session"
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(code string, msgID uint16, data []byte) error
	SendToSession(sessionID string, msgID uint16, data []byte) error
}

// 基于房间的广播器
type RoomBroadcaster struct {
	registry       *room.Registry
	sessionManager *session.Manager
}

func NewRoomBroadcaster(registry *room.Registry, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		registry:       registry,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(code string, msgID uint16, data []byte) error {
	r, exists := b.registry.Get(code)
	if !exists {
		return room.ErrRoomNotFound
	}

	// Get a thread-safe copy of the sessions
	sessions := r.GetSessions()

	for _, s := range sessions {
		if err := s.Send(msgID, data); err != nil {
			// A dead connection surfaces in its own read loop; skip it here.
			continue
		}
	}

	return nil
}

func (b *RoomBroadcaster) SendToSession(sessionID string, msgID uint16, data []byte) error {
	s, exists := b.sessionManager.Get(sessionID)
	if !exists {
		return nil
	}
	return s.Send(msgID, data)
}
