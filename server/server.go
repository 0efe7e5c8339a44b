package server

import (
	"errors"
	"net"
	"net/http"
	netrpc "net/rpc"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/spellchain/broadcast"
	"github.com/wfunc/spellchain/config"
	"github.com/wfunc/spellchain/dictionary"
	"github.com/wfunc/spellchain/logger"
	"github.com/wfunc/spellchain/monitor"
	"github.com/wfunc/spellchain/network"
	"github.com/wfunc/spellchain/persistence"
	"github.com/wfunc/spellchain/room"
	"github.com/wfunc/spellchain/rpc"
	"github.com/wfunc/spellchain/services"
	"github.com/wfunc/spellchain/session"
	"github.com/wfunc/spellchain/timer"
)

// GameServer owns the listening sockets, the room registry and the session
// manager. One goroutine runs the accept loop; every accepted connection gets
// its own handler goroutine that reads, dispatches and answers until the
// client goes away.
type GameServer struct {
	cfg            config.ServerConfig
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    room.Broadcaster
	recordService  *services.RecordService
	mon            *monitor.Monitor
	timers         *timer.Manager
	rpcServer      *rpc.Server
	listener       net.Listener
	wsServer       *http.Server
	upgrader       websocket.Upgrader
	shutdownChan   chan struct{}
}

func NewGameServer(cfg config.ServerConfig, dict *dictionary.Trie, db persistence.Database) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		roomManager:    room.NewManager(dict),
		sessionManager: session.NewManager(),
		broadcaster:    broadcast.NewJSON(),
		recordService:  services.NewRecordService(db),
		timers:         timer.NewManager(),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	if cfg.MonitorAddress != "" {
		s.mon = monitor.NewMonitor("spellchain")
	}

	if cfg.RPCAddress != "" {
		rpcServer, err := rpc.NewServer(cfg.RPCAddress)
		if err != nil {
			logger.Log.Fatalf("Failed to create admin RPC server: %v", err)
		}
		s.rpcServer = rpcServer
		netrpc.Register(rpc.NewAdminService(s, dict, s.recordService))
	}

	return s
}

// RoomCount implements rpc.StatsProvider.
func (s *GameServer) RoomCount() int {
	return s.roomManager.Count()
}

// SessionCount implements rpc.StatsProvider.
func (s *GameServer) SessionCount() int {
	return s.sessionManager.Count()
}

// Start binds the TCP listener and blocks in the accept loop until Shutdown.
func (s *GameServer) Start() error {
	listener, err := net.Listen("tcp", s.cfg.TCPAddress)
	if err != nil {
		return err
	}
	s.listener = listener

	if s.rpcServer != nil {
		go s.rpcServer.Start()
	}
	if s.mon != nil {
		s.mon.StartServer(s.cfg.MonitorAddress)
		logger.Log.Infof("Monitoring endpoint on %s/metrics", s.cfg.MonitorAddress)
	}
	if s.cfg.WSAddress != "" {
		s.startWebsocket()
	}

	s.timers.AddTimer(30*time.Second, 30*time.Second, s.sweepIdleSessions)
	s.timers.AddTimer(5*time.Second, 5*time.Second, s.refreshGauges)

	logger.Log.Infof("SpellChain server listening on %s", s.cfg.TCPAddress)
	return s.acceptLoop()
}

// acceptLoop wakes once a second so a pending shutdown is noticed even while
// no clients are connecting.
func (s *GameServer) acceptLoop() error {
	tcpListener, _ := s.listener.(*net.TCPListener)
	for {
		select {
		case <-s.shutdownChan:
			return nil
		default:
		}

		if tcpListener != nil {
			tcpListener.SetDeadline(time.Now().Add(time.Second))
		}
		conn, err := s.listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-s.shutdownChan:
				return nil
			default:
			}
			logger.Log.Errorf("Accept error: %v", err)
			continue
		}

		logger.Log.Infof("Accepted connection from %s", conn.RemoteAddr())
		go s.handleConnection(network.NewTCPConnection(conn))
	}
}

func (s *GameServer) startWebsocket() {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Log.Warnf("Failed to upgrade connection: %v", err)
			return
		}
		s.handleConnection(network.NewWSConnection(conn))
	})

	s.wsServer = &http.Server{Addr: s.cfg.WSAddress, Handler: mux}
	go func() {
		logger.Log.Infof("Websocket endpoint on ws://%s/ws", s.cfg.WSAddress)
		if err := s.wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorf("Websocket server error: %v", err)
		}
	}()
}

// Shutdown closes every socket and clears the registry. Blocked reads in the
// handler goroutines fail immediately, which unwinds them.
func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	if s.listener != nil {
		s.listener.Close()
	}
	if s.wsServer != nil {
		s.wsServer.Close()
	}
	if s.rpcServer != nil {
		s.rpcServer.Stop()
	}
	s.timers.Stop()
	s.roomManager.Shutdown()
	logger.Log.Info("Server has been shut down.")
}

// handleConnection owns one client socket for its whole lifetime. A panic in
// the dispatch path kills only this connection, never the process.
func (s *GameServer) handleConnection(conn network.Connection) {
	conn.SetIdleTimeout(s.cfg.IdleTimeout)

	sess := session.NewSession(uuid.New().String(), conn)
	s.sessionManager.Add(sess)
	if s.mon != nil {
		s.mon.IncOnlinePlayers()
	}

	reason := "Network disconnection"
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("Panic in handler of session %s: %v", sess.GetID(), r)
			reason = "Unexpected error"
		}
		logger.Log.Infof("Connection closed from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		if s.mon != nil {
			s.mon.DecOnlinePlayers()
		}
		if sess.RoomID != "" {
			s.endRoom(sess.RoomID, sess.PlayerNumber, reason)
		}
		conn.Close()
	}()

	logger.Log.Infof("New connection from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())

	for {
		line, err := conn.ReadMessage()
		if err != nil {
			if errors.Is(err, network.ErrLineTooLong) {
				sess.Send(network.NewError("Message too large."))
				continue
			}
			return
		}
		if len(line) == 0 {
			continue
		}
		sess.Touch()

		if exit := s.handleMessage(sess, line); exit {
			reason = "Player exited the game."
			return
		}
	}
}

// handleMessage decodes and dispatches one request line. It reports whether
// the connection should wind down (the exit request).
func (s *GameServer) handleMessage(sess *session.Session, line []byte) bool {
	start := time.Now()
	if s.mon != nil {
		s.mon.IncMessagesReceived()
		defer func() {
			s.mon.ObserveMessageLatency(time.Since(start))
		}()
	}

	msg, err := network.DecodeClientMessage(line)
	if err != nil {
		sess.Send(network.NewError(errorText(err)))
		return false
	}

	switch msg.Type {
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, msg)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, msg)
	case network.MsgTypeAddCharacter:
		s.handleAddCharacter(sess, msg)
	case network.MsgTypeExit:
		if sess.RoomID != "" {
			return true
		}
		sess.Send(network.NewError("You are not part of any room."))
	}
	return false
}

func (s *GameServer) handleCreateRoom(sess *session.Session, msg *network.ClientMessage) {
	if sess.RoomID != "" {
		sess.Send(network.NewError("You are already in a room."))
		return
	}

	rm := s.roomManager.CreateRoom(msg.PlayerCount, s.broadcaster)
	if _, err := rm.AddPlayer(sess, network.MsgTypeRoomCreated); err != nil {
		sess.Send(network.NewError(errorText(err)))
		return
	}

	logger.Log.Infof("Room %s created with %d player slots", rm.Code, rm.PlayerCount)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, msg *network.ClientMessage) {
	if sess.RoomID != "" {
		sess.Send(network.NewError("You are already in a room."))
		return
	}

	rm, exists := s.roomManager.GetRoom(msg.RoomID)
	if !exists {
		sess.Send(network.NewError("Room ID could not be found."))
		return
	}

	number, err := rm.AddPlayer(sess, network.MsgTypeRoomJoined)
	if err != nil {
		sess.Send(network.NewError(errorText(err)))
		return
	}

	logger.Log.Infof("Player %d joined room %s", number, rm.Code)
}

func (s *GameServer) handleAddCharacter(sess *session.Session, msg *network.ClientMessage) {
	if sess.RoomID == "" {
		sess.Send(network.NewError("You are not part of any room."))
		return
	}

	rm, exists := s.roomManager.GetRoom(sess.RoomID)
	if !exists {
		sess.Send(network.NewError("Room ID could not be found."))
		return
	}

	result, err := rm.ProcessCharacter(sess.PlayerNumber, msg.Char)
	if err != nil {
		sess.Send(network.NewError(errorText(err)))
		return
	}
	if s.mon != nil {
		if result.CompletedWord != "" {
			s.mon.IncWordsCompleted()
		}
		if result.RoundOver {
			s.mon.IncRoundsPlayed()
		}
	}
}

// endRoom tears the whole room down on any player's departure and archives
// the final state. Safe to reach from several handlers at once: only the
// first removal produces a snapshot, and only one deletion can succeed.
func (s *GameServer) endRoom(code string, playerNumber int, reason string) {
	rm, exists := s.roomManager.GetRoom(code)
	if !exists {
		return
	}

	snapshot := rm.RemovePlayer(playerNumber, reason)
	s.roomManager.DeleteIfEmpty(code)
	if snapshot != nil {
		go s.recordService.ArchiveGame(snapshot)
	}
}

// sweepIdleSessions closes connections that stayed silent past the idle
// timeout; their read loops then unwind through the regular disconnect path.
func (s *GameServer) sweepIdleSessions() {
	if s.cfg.IdleTimeout <= 0 {
		return
	}
	for _, sess := range s.sessionManager.Snapshot() {
		if sess.IdleFor() > s.cfg.IdleTimeout {
			logger.Log.Infof("Closing idle session %s", sess.GetID())
			sess.Close()
		}
	}
}

func (s *GameServer) refreshGauges() {
	if s.mon != nil {
		s.mon.SetActiveRooms(s.roomManager.Count())
	}
}

// errorText maps internal errors to the client-facing message.
func errorText(err error) string {
	switch {
	case errors.Is(err, network.ErrInvalidJSON):
		return "Invalid JSON format."
	case errors.Is(err, network.ErrUnknownType):
		return "Unknown message type."
	case errors.Is(err, room.ErrRoomFull):
		return "Room is already full."
	case errors.Is(err, room.ErrNotYourTurn):
		return "Not your turn."
	case errors.Is(err, room.ErrGameNotActive):
		return "The game has not started yet."
	case errors.Is(err, room.ErrRoomEnded):
		return "Room ID could not be found."
	case errors.Is(err, network.ErrValidation):
		return validationText(err)
	default:
		return err.Error()
	}
}

// validationText strips the sentinel prefix from a wrapped validation error,
// leaving a presentable sentence: "Invalid character input." and friends.
func validationText(err error) string {
	text := strings.TrimPrefix(err.Error(), network.ErrValidation.Error()+": ")
	if text == "" {
		return "Invalid request."
	}
	return strings.ToUpper(text[:1]) + text[1:] + "."
}
