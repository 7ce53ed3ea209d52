package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/yatzyserver/logger"
	"github.com/wfunc/yatzyserver/models"
	"github.com/wfunc/yatzyserver/room"
	"github.com/wfunc/yatzyserver/services"
	"github.com/wfunc/yatzyserver/session"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// OpsService exposes operational queries over net/rpc: live room and session
// counts, a room listing, and match-store lookups.
type OpsService struct {
	registry     *room.Registry
	sessions     *session.Manager
	matchService *services.MatchService
}

func NewOpsService(registry *room.Registry, sessions *session.Manager, ms *services.MatchService) *OpsService {
	return &OpsService{
		registry:     registry,
		sessions:     sessions,
		matchService: ms,
	}
}

type StatsArgs struct{}

type StatsReply struct {
	Rooms    int
	Sessions int
}

func (o *OpsService) Stats(args *StatsArgs, reply *StatsReply) error {
	reply.Rooms = o.registry.Count()
	reply.Sessions = o.sessions.Count()
	return nil
}

type RoomSummary struct {
	Code    string
	Phase   string
	Players int
	Members int
	Turn    int
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []RoomSummary
}

func (o *OpsService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	for _, r := range o.registry.Rooms() {
		st := r.State()
		reply.Rooms = append(reply.Rooms, RoomSummary{
			Code:    r.Code,
			Phase:   string(st.Phase),
			Players: len(st.Players),
			Members: r.MemberCount(),
			Turn:    st.Turn,
		})
	}
	return nil
}

type PlayerStatsArgs struct {
	Name string
}

type PlayerStatsReply struct {
	Stats *models.PlayerStats
}

func (o *OpsService) GetPlayerStats(args *PlayerStatsArgs, reply *PlayerStatsReply) error {
	stats, err := o.matchService.PlayerStats(args.Name)
	if err != nil {
		return err
	}
	reply.Stats = stats
	return nil
}

type RecentMatchesArgs struct {
	Limit int
}

type RecentMatchesReply struct {
	Matches []models.MatchRecord
}

func (o *OpsService) RecentMatches(args *RecentMatchesArgs, reply *RecentMatchesReply) error {
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}
	matches, err := o.matchService.RecentMatches(limit)
	if err != nil {
		return err
	}
	reply.Matches = matches
	return nil
}
