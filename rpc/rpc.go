package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/spellchain/dictionary"
	"github.com/wfunc/spellchain/logger"
	"github.com/wfunc/spellchain/models"
	"github.com/wfunc/spellchain/services"
)

// Server manages the admin RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates the listener; services are registered by the caller
// through net/rpc before Start.
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

func (s *Server) Start() {
	logger.Log.Infof("Admin RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("Admin RPC listener closed.")
				return
			}
			logger.Log.Errorf("Admin RPC accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping admin RPC server.")
		s.listener.Close()
	}
}

// StatsProvider decouples the RPC surface from the game server type.
type StatsProvider interface {
	RoomCount() int
	SessionCount() int
}

// AdminService exposes operational queries over net/rpc: live counts,
// dictionary probes and the archived leaderboard.
type AdminService struct {
	stats   StatsProvider
	dict    *dictionary.Trie
	records *services.RecordService
}

func NewAdminService(stats StatsProvider, dict *dictionary.Trie, records *services.RecordService) *AdminService {
	return &AdminService{stats: stats, dict: dict, records: records}
}

type StatsArgs struct{}

type StatsReply struct {
	Rooms    int
	Sessions int
	Words    int
}

func (a *AdminService) Stats(args *StatsArgs, reply *StatsReply) error {
	reply.Rooms = a.stats.RoomCount()
	reply.Sessions = a.stats.SessionCount()
	reply.Words = a.dict.Len()
	return nil
}

type DefineArgs struct {
	Word string
}

type DefineReply struct {
	IsWord     bool
	Definition string
}

func (a *AdminService) Define(args *DefineArgs, reply *DefineReply) error {
	reply.IsWord = a.dict.SearchWord(args.Word)
	reply.Definition = a.dict.GetDefinition(args.Word)
	return nil
}

type TopScoresArgs struct {
	Limit int
}

type TopScoresReply struct {
	Scores []models.PlayerScore
}

func (a *AdminService) TopScores(args *TopScoresArgs, reply *TopScoresReply) error {
	scores, err := a.records.TopScores(args.Limit)
	if err != nil {
		return err
	}
	reply.Scores = scores
	return nil
}
