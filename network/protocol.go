package network

// Inbound message IDs.
const (
	MsgTypeHeartbeat     = 1
	MsgTypeCreateRoom    = 101
	MsgTypeJoinRoom      = 102
	MsgTypeLeaveRoom     = 103
	MsgTypeRollDice      = 201
	MsgTypeToggleHold    = 202
	MsgTypeScoreCategory = 203
	MsgTypeSurrender     = 204
	MsgTypeRematch       = 205
)

// Outbound message IDs.
const (
	MsgTypeRoomCreated        = 301
	MsgTypeGameStarted        = 302
	MsgTypeGameState          = 303
	MsgTypeGameOver           = 304
	MsgTypePlayerDisconnected = 305
	MsgTypeError              = 400
)
