package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/rpc"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/yatzyserver/broadcast"
	"github.com/wfunc/yatzyserver/config"
	"github.com/wfunc/yatzyserver/game"
	"github.com/wfunc/yatzyserver/logger"
	"github.com/wfunc/yatzyserver/models"
	"github.com/wfunc/yatzyserver/monitor"
	"github.com/wfunc/yatzyserver/network"
	"github.com/wfunc/yatzyserver/persistence"
	"github.com/wfunc/yatzyserver/room"
	yatzyserver_rpc "github.com/wfunc/yatzyserver/rpc"
	"github.com/wfunc/yatzyserver/services"
	"github.com/wfunc/yatzyserver/session"
	"github.com/wfunc/yatzyserver/timer"
	"github.com/wfunc/yatzyserver/yatzy"
)

// errNoChange marks a silently ignored hold attempt; nothing is broadcast.
var errNoChange = errors.New("no change")

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	registry       *room.Registry
	sessionManager *session.Manager
	matchService   *services.MatchService
	broadcaster    broadcast.Broadcaster
	rpcServer      *yatzyserver_rpc.Server
	mon            *monitor.Monitor
	timers         *timer.Manager
	idleTimeout    time.Duration
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, db persistence.Database) *GameServer {
	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		registry:       room.NewRegistry(),
		sessionManager: session.NewManager(),
		matchService:   services.NewMatchService(db),
		mon:            monitor.NewMonitor("yatzyserver"),
		timers:         timer.NewManager(),
		idleTimeout:    cfg.Rooms.IdleTimeout,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器
	s.broadcaster = broadcast.NewRoomBroadcaster(s.registry, s.sessionManager)

	// 初始化RPC服务器
	rpcServer, err := yatzyserver_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	// 注册RPC服务
	opsService := yatzyserver_rpc.NewOpsService(s.registry, s.sessionManager, s.matchService)
	rpc.Register(opsService)

	s.timers.Schedule(cfg.Rooms.CleanupInterval, cfg.Rooms.CleanupInterval, s.sweepIdleRooms)

	s.mon.StartServer(cfg.Server.MonitorAddress)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	})

	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.mon.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		// A disconnect is handled exactly like an explicit leave.
		s.notifyLeave(s.registry.Leave(sess.GetID()))
		s.sessionManager.Remove(sess.GetID())
		s.mon.DecOnlinePlayers()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	s.mon.IncActionsReceived()
	defer func() {
		s.mon.ObserveActionLatency(time.Since(start))
		// A fault in one action must not take the connection or the room
		// down with it.
		if p := recover(); p != nil {
			logger.Log.Errorf("panic handling message %d from %s: %v", packet.MsgID, sess.GetID(), p)
			s.sendError(sess, "internal error")
		}
	}()

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess)
	case network.MsgTypeRollDice:
		s.handleRollDice(sess)
	case network.MsgTypeToggleHold:
		s.handleToggleHold(sess, packet)
	case network.MsgTypeScoreCategory:
		s.handleScoreCategory(sess, packet)
	case network.MsgTypeSurrender:
		s.handleSurrender(sess)
	case network.MsgTypeRematch:
		s.handleRematch(sess)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	var req models.CreateRoomRequest
	json.Unmarshal(packet.Data, &req)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Player 1"
	}

	r, prior, err := s.registry.CreateRoom(sess, name, req.Avatar, s.broadcaster)
	s.notifyLeave(prior)
	if err != nil {
		s.rejectAction(sess, err)
		return
	}

	sess.SendJSON(network.MsgTypeRoomCreated, models.RoomCreated{
		Code:     r.Code,
		RoomID:   r.ID,
		PlayerID: sess.GetID(),
	})
	sess.SendJSON(network.MsgTypeGameState, r.State())
	s.mon.SetActiveRooms(s.registry.Count())
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req models.JoinRoomRequest
	json.Unmarshal(packet.Data, &req)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Player 2"
	}

	r, prior, err := s.registry.JoinRoom(sess, req.Code, name, req.Avatar)
	s.notifyLeave(prior)
	if err != nil {
		s.rejectAction(sess, err)
		return
	}

	data, _ := json.Marshal(models.GameStarted{RoomID: r.ID})
	r.Broadcast(network.MsgTypeGameStarted, data)
	s.broadcastState(r)
	s.mon.SetActiveRooms(s.registry.Count())
}

func (s *GameServer) handleLeaveRoom(sess *session.Session) {
	s.notifyLeave(s.registry.Leave(sess.GetID()))
}

func (s *GameServer) handleRollDice(sess *session.Session) {
	r, ok := s.actingRoom(sess)
	if !ok {
		return
	}
	if _, err := r.Update(func(st *game.State) error {
		return st.Roll(sess.GetID())
	}); err != nil {
		s.rejectAction(sess, err)
		return
	}
	s.broadcastState(r)
}

func (s *GameServer) handleToggleHold(sess *session.Session, packet *network.Packet) {
	var req models.ToggleHoldRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}
	r, exists := s.registry.RoomBySession(sess.GetID())
	if !exists {
		return
	}
	// Invalid hold attempts are ignored without an error reply.
	_, err := r.Update(func(st *game.State) error {
		if !st.ToggleHold(sess.GetID(), req.Index) {
			return errNoChange
		}
		return nil
	})
	if err == nil {
		s.broadcastState(r)
	}
}

func (s *GameServer) handleScoreCategory(sess *session.Session, packet *network.Packet) {
	var req models.ScoreCategoryRequest
	json.Unmarshal(packet.Data, &req)

	r, ok := s.actingRoom(sess)
	if !ok {
		return
	}
	st, err := r.Update(func(st *game.State) error {
		return st.ScoreCategory(sess.GetID(), yatzy.Category(req.Category))
	})
	if err != nil {
		s.rejectAction(sess, err)
		return
	}

	s.broadcastState(r)
	if st.Phase == game.PhaseFinished {
		s.finishGame(r, st)
	}
}

func (s *GameServer) handleSurrender(sess *session.Session) {
	r, ok := s.actingRoom(sess)
	if !ok {
		return
	}
	st, err := r.Update(func(st *game.State) error {
		return st.Surrender(sess.GetID())
	})
	if err != nil {
		s.rejectAction(sess, err)
		return
	}

	s.broadcastState(r)
	s.finishGame(r, st)
}

func (s *GameServer) handleRematch(sess *session.Session) {
	r, ok := s.actingRoom(sess)
	if !ok {
		return
	}
	if _, err := r.Update(func(st *game.State) error {
		return st.Rematch()
	}); err != nil {
		s.rejectAction(sess, err)
		return
	}

	data, _ := json.Marshal(models.GameStarted{RoomID: r.ID})
	r.Broadcast(network.MsgTypeGameStarted, data)
	s.broadcastState(r)
}

// actingRoom resolves the room the connection is bound to, reporting the
// failure to the caller as an error message.
func (s *GameServer) actingRoom(sess *session.Session) (*room.Room, bool) {
	r, exists := s.registry.RoomBySession(sess.GetID())
	if !exists {
		s.rejectAction(sess, room.ErrRoomNotFound)
		return nil, false
	}
	return r, true
}

// finishGame emits the terminal broadcast and records the match. The store
// write runs off the action path; a failure only logs.
func (s *GameServer) finishGame(r *room.Room, st *game.State) {
	data, _ := json.Marshal(models.GameOver{
		Winner:       st.Winner,
		Players:      st.Players,
		Surrendered:  st.Surrendered,
		OpponentLeft: st.OpponentLeft,
	})
	r.Broadcast(network.MsgTypeGameOver, data)
	s.mon.IncGamesFinished()

	code := r.Code
	go func() {
		if err := s.matchService.RecordFinishedGame(code, st); err != nil {
			logger.Log.Errorf("Failed to record match for room %s: %v", code, err)
		}
	}()
}

// notifyLeave fans out the consequences of a completed departure: the
// remaining member learns about it, and a game cut short mid-play gets its
// terminal broadcast.
func (s *GameServer) notifyLeave(res *room.LeaveResult) {
	if res == nil {
		return
	}
	if !res.Evicted {
		data, _ := json.Marshal(models.PlayerDisconnected{ID: res.PlayerID})
		res.Room.Broadcast(network.MsgTypePlayerDisconnected, data)
		s.broadcastState(res.Room)
		if res.State.Phase == game.PhaseFinished && res.State.OpponentLeft {
			s.finishGame(res.Room, res.State)
		}
	}
	s.mon.SetActiveRooms(s.registry.Count())
}

func (s *GameServer) broadcastState(r *room.Room) {
	data, err := json.Marshal(r.State())
	if err != nil {
		logger.Log.Errorf("Error marshalling state for room %s: %v", r.Code, err)
		return
	}
	r.Broadcast(network.MsgTypeGameState, data)
}

// rejectAction reports a rejected action to the acting connection only.
func (s *GameServer) rejectAction(sess *session.Session, err error) {
	s.mon.IncActionsRejected()
	s.sendError(sess, userMessage(err))
}

func (s *GameServer) sendError(sess *session.Session, message string) {
	sess.SendJSON(network.MsgTypeError, models.ErrorMessage{Message: message})
}

// userMessage maps known rejections to their client-facing text. Anything
// unrecognized stays generic.
func userMessage(err error) string {
	switch {
	case errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrAlreadyJoined),
		errors.Is(err, game.ErrGameAlreadyStarted),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrNoRollsLeft),
		errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, game.ErrMustRollFirst),
		errors.Is(err, game.ErrInvalidCategory),
		errors.Is(err, game.ErrCategoryAlreadyScored),
		errors.Is(err, game.ErrGameFinished),
		errors.Is(err, game.ErrOpponentLeft),
		errors.Is(err, game.ErrUnknownPlayer):
		return err.Error()
	}
	return "internal error"
}

// sweepIdleRooms closes every connection of rooms idle past the timeout; the
// read loops then tear the rooms down through the normal leave path.
func (s *GameServer) sweepIdleRooms() {
	for _, r := range s.registry.Rooms() {
		if time.Since(r.LastActive()) > s.idleTimeout {
			logger.Log.Infof("Closing idle room %s", r.Code)
			for _, member := range r.GetSessions() {
				member.Close()
			}
		}
	}
}
