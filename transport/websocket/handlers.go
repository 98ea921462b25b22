package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/kyivgames/tictactoe-backend/internal/registry"
)

// roomCodePattern is the only accepted room code shape; anything else is
// rejected before it reaches the state machine.
var roomCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func (that *Server) handleCreateRoom(ctx context.Context, sess *session, _ *Message) error {
	log := that.logger.With("method", "handleCreateRoom", "playerID", sess.playerID)

	// a connection holds at most one room binding
	that.leaveCurrentRoom(ctx, sess)

	room, err := that.rooms.CreateRoom(ctx, sess.playerID)
	if err != nil {
		log.Error("failed to create room", "error", err)
		that.sendError(sess, errorKind(err), "failed to create room")
		return nil
	}

	sess.roomCode = room.Code

	return that.sendMessage(sess, ActionRoomCreated, RoomAckPayload{
		RoomCode: room.Code,
		Symbol:   room.Participant(sess.playerID).Symbol,
		Message:  fmt.Sprintf("Room %s created, waiting for an opponent", room.Code),
	})
}

func (that *Server) handleJoinRoom(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleJoinRoom", "playerID", sess.playerID)

	var req RoomRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		that.sendError(sess, KindBadRequest, "malformed payload")
		return nil
	}

	code, ok := validRoomCode(req.RoomCode)
	if !ok {
		that.sendError(sess, KindBadRequest, "malformed room code")
		return nil
	}

	if sess.roomCode != code {
		that.leaveCurrentRoom(ctx, sess)
	}

	room, err := that.rooms.JoinRoom(ctx, code, sess.playerID)
	if err != nil {
		log.Error("failed to join room", "code", code, "error", err)
		that.sendError(sess, errorKind(err), fmt.Sprintf("cannot join room %s", code))
		return nil
	}

	sess.roomCode = room.Code
	symbol := room.Participant(sess.playerID).Symbol

	if err = that.sendMessage(sess, ActionRoomJoined, RoomAckPayload{
		RoomCode: room.Code,
		Symbol:   symbol,
		Message:  fmt.Sprintf("You joined as %s", symbol),
	}); err != nil {
		return err
	}

	snapshot := room.Snapshot()
	that.broadcast(room, ActionGameStart, GameStartPayload{
		Version: snapshot.Version,
		Board:   snapshot.Board,
		Turn:    snapshot.Turn,
		Scores:  snapshot.Scores,
	})

	return nil
}

func (that *Server) handleOnlineMove(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleOnlineMove", "playerID", sess.playerID)

	var req MoveRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		that.sendError(sess, KindBadRequest, "malformed payload")
		return nil
	}

	code, ok := validRoomCode(req.RoomCode)
	if !ok {
		that.sendError(sess, KindBadRequest, "malformed room code")
		return nil
	}

	if req.Row == nil || req.Col == nil {
		that.sendError(sess, KindBadRequest, "row and col are required")
		return nil
	}

	// the snapshot is captured inside the move's critical section; together
	// with its version it lets receivers discard snapshots overtaken in flight
	room, snapshot, err := that.rooms.MakeMove(ctx, code, sess.playerID, *req.Row, *req.Col)
	if err != nil {
		log.Error("failed to make move", "code", code, "error", err)
		that.sendError(sess, errorKind(err), "move rejected")
		return nil
	}

	that.broadcast(room, ActionGameUpdate, GameUpdatePayload{
		Version: snapshot.Version,
		Board:   snapshot.Board,
		Turn:    snapshot.Turn,
		Winner:  snapshot.Winner,
		WinLine: snapshot.WinLine,
		LastMove: &LastMove{
			Row:    *req.Row,
			Col:    *req.Col,
			Symbol: room.Participant(sess.playerID).Symbol,
		},
		Scores: snapshot.Scores,
	})

	return nil
}

func (that *Server) handleRequestRematch(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleRequestRematch", "playerID", sess.playerID)

	var req RoomRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		that.sendError(sess, KindBadRequest, "malformed payload")
		return nil
	}

	code, ok := validRoomCode(req.RoomCode)
	if !ok {
		that.sendError(sess, KindBadRequest, "malformed room code")
		return nil
	}

	room, started, err := that.rooms.RequestRematch(ctx, code, sess.playerID)
	if err != nil {
		log.Error("failed to request rematch", "code", code, "error", err)
		that.sendError(sess, errorKind(err), "rematch request rejected")
		return nil
	}

	if started {
		snapshot := room.Snapshot()
		that.broadcast(room, ActionGameStart, GameStartPayload{
			Version: snapshot.Version,
			Board:   snapshot.Board,
			Turn:    snapshot.Turn,
			Scores:  snapshot.Scores,
		})
		return nil
	}

	// only one vote so far: offer the peer a one-click accept
	for _, peer := range room.Peers() {
		if peer.ID == sess.playerID {
			continue
		}
		that.sendToPlayer(peer.ID, ActionRematchRequested, NoticePayload{Message: "Your opponent wants a rematch"})
	}

	return nil
}

func (that *Server) handleLeaveRoom(ctx context.Context, sess *session, msg *Message) error {
	log := that.logger.With("method", "handleLeaveRoom", "playerID", sess.playerID)

	var req RoomRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		that.sendError(sess, KindBadRequest, "malformed payload")
		return nil
	}

	code, ok := validRoomCode(req.RoomCode)
	if !ok {
		that.sendError(sess, KindBadRequest, "malformed room code")
		return nil
	}

	// only the session's own binding can be torn down
	if code != sess.roomCode {
		that.sendError(sess, KindUnauthorized, "you are not in this room")
		return nil
	}

	that.leaveCurrentRoom(ctx, sess)

	log.Info("player left room", "code", code)

	return nil
}

// validRoomCode normalizes a client-supplied code and checks its shape.
func validRoomCode(code string) (string, bool) {
	normalized := registry.NormalizeCode(code)

	return normalized, roomCodePattern.MatchString(normalized)
}
