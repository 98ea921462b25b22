package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kyivgames/tictactoe-backend/internal/entity"
)

const sessionCookieName = "user_session"

type roomManager interface {
	ConnectPlayer(ctx context.Context, id string) (*entity.Player, error)
	CreateRoom(ctx context.Context, playerID string) (*entity.Room, error)
	JoinRoom(ctx context.Context, code, playerID string) (*entity.Room, error)
	MakeMove(ctx context.Context, code, playerID string, row, col int) (*entity.Room, entity.Snapshot, error)
	RequestRematch(ctx context.Context, code, playerID string) (*entity.Room, bool, error)
	LeaveRoom(ctx context.Context, code, playerID string) (*entity.Player, error)
}

// session is one WebSocket connection bound to a player. Writes to the
// connection are serialized by the session's own mutex; roomCode is only
// touched from the connection's read loop.
type session struct {
	writeMu sync.Mutex
	conn    *websocket.Conn

	playerID string
	roomCode string
}

// Server is the session gateway: it authenticates a connection's player
// identity, routes inbound protocol messages to the room manager and fans
// resulting snapshots out to every bound participant of the room.
type Server struct {
	logger *slog.Logger
	rooms  roomManager

	upgrader websocket.Upgrader

	sessionsMutex sync.RWMutex
	sessions      map[string]*session

	handlers map[string]func(ctx context.Context, sess *session, message *Message) error
}

func New(logger *slog.Logger, rooms roomManager) *Server {
	server := &Server{
		logger: logger,
		rooms:  rooms,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},

		sessions: make(map[string]*session),
		handlers: make(map[string]func(context.Context, *session, *Message) error),
	}

	server.handlers[ActionCreateRoom] = server.handleCreateRoom
	server.handlers[ActionJoinRoom] = server.handleJoinRoom
	server.handlers[ActionOnlineMove] = server.handleOnlineMove
	server.handlers[ActionRequestRematch] = server.handleRequestRematch
	server.handlers[ActionLeaveRoom] = server.handleLeaveRoom

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveConnection upgrades the request and runs the connection's read loop.
func (that *Server) serveConnection(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	sessionID, header := that.sessionID(req)

	conn, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer conn.Close()

	player, err := that.rooms.ConnectPlayer(ctx, sessionID)
	if err != nil {
		log.Error("failed to connect player", "error", err)
		return
	}

	sess := &session{
		conn:     conn,
		playerID: player.ID,
	}

	that.registerSession(sess)
	defer that.dropSession(ctx, sess)

	log.Info("WebSocket connection established", "playerID", sess.playerID)

	that.readLoop(ctx, sess)
}

// readLoop processes messages from the client until the connection drops.
func (that *Server) readLoop(ctx context.Context, sess *session) {
	log := that.logger.With("method", "readLoop", "playerID", sess.playerID)

	for {
		_, reqBody, err := sess.conn.ReadMessage()
		if err != nil {
			log.Info("connection closed", "error", err)
			return
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			that.sendError(sess, KindBadRequest, "malformed message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			that.sendError(sess, KindBadRequest, fmt.Sprintf("unknown action %q", message.Action))
			continue
		}

		if err = handler(ctx, sess, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// sessionID reads the session cookie, minting a new identity (and the
// Set-Cookie handshake header) when the client brings none.
func (that *Server) sessionID(req *http.Request) (string, http.Header) {
	log := that.logger.With("method", "sessionID")

	cookie, err := req.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	cookie = &http.Cookie{
		Name:    sessionCookieName,
		Value:   uuid.NewString(),
		Expires: time.Now().Add(24 * time.Hour),
		Path:    "/ws",
	}

	log.Info("session cookie not found, new one created", "cookie", cookie.Value)

	return cookie.Value, http.Header{"Set-Cookie": []string{cookie.String()}}
}

func (that *Server) registerSession(sess *session) {
	that.sessionsMutex.Lock()
	defer that.sessionsMutex.Unlock()

	that.sessions[sess.playerID] = sess
}

// dropSession runs exactly once per connection. A disconnect is a lifecycle
// event, not an error: the player's room is destroyed and the peer notified.
func (that *Server) dropSession(ctx context.Context, sess *session) {
	log := that.logger.With("method", "dropSession", "playerID", sess.playerID)

	that.sessionsMutex.Lock()
	if that.sessions[sess.playerID] == sess {
		delete(that.sessions, sess.playerID)
	}
	that.sessionsMutex.Unlock()

	that.leaveCurrentRoom(ctx, sess)

	log.Info("player disconnected")
}

// leaveCurrentRoom tears down the session's room binding, if any: the room is
// destroyed and the peer notified. Called on disconnect and before a bound
// session creates or joins another room, so a connection never holds more
// than one binding.
func (that *Server) leaveCurrentRoom(ctx context.Context, sess *session) {
	if sess.roomCode == "" {
		return
	}

	peer, err := that.rooms.LeaveRoom(ctx, sess.roomCode, sess.playerID)
	if err != nil {
		that.logger.Error("failed to leave room", "playerID", sess.playerID, "roomCode", sess.roomCode, "error", err)
	}

	if peer != nil {
		that.sendToPlayer(peer.ID, ActionOpponentLeft, NoticePayload{Message: "Your opponent left the room"})
	}

	sess.roomCode = ""
}

// sendMessage writes one frame to a session, serialized per connection.
func (that *Server) sendMessage(sess *session, action string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()

	if err = sess.conn.WriteJSON(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// sendToPlayer delivers to a player's current session, if it is connected.
func (that *Server) sendToPlayer(playerID, action string, payload any) {
	that.sessionsMutex.RLock()
	sess, ok := that.sessions[playerID]
	that.sessionsMutex.RUnlock()

	if !ok {
		that.logger.Warn("connection not found for player", "playerID", playerID)
		return
	}

	if err := that.sendMessage(sess, action, payload); err != nil {
		that.logger.Error("failed to send message", "playerID", playerID, "error", err)
	}
}

// broadcast fans a payload out to all currently-bound participants of the
// room, never to the sender only, so both sides observe the same state.
func (that *Server) broadcast(room *entity.Room, action string, payload any) {
	for _, peer := range room.Peers() {
		that.sendToPlayer(peer.ID, action, payload)
	}
}

func (that *Server) sendError(sess *session, kind, message string) {
	if err := that.sendMessage(sess, ActionError, ErrorPayload{Message: message, Kind: kind}); err != nil {
		that.logger.Error("failed to send error response", "playerID", sess.playerID, "error", err)
	}
}
