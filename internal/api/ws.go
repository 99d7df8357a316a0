package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/internai/interviewd/internal/interrupt"
	"github.com/internai/interviewd/internal/orchestrator"
)

// liveMessage is one client frame on the live channel: the partial
// transcript so far plus any delivery issues the capture side detected.
type liveMessage struct {
	Type           string                  `json:"type"`
	Transcript     string                  `json:"transcript"`
	ElapsedSeconds float64                 `json:"elapsed_seconds"`
	Issues         []interrupt.ClientIssue `json:"issues,omitempty"`
}

// liveReply is pushed whenever the engine decides to warn or interrupt.
// Silent checks produce no frame.
type liveReply struct {
	Type          string              `json:"type"`
	Decision      *interrupt.Decision `json:"decision,omitempty"`
	FollowUp      string              `json:"followup_question,omitempty"`
	QuestionAudio *audioPayload       `json:"followup_audio,omitempty"`
	Error         string              `json:"error,omitempty"`
}

// handleLive runs the WebSocket loop for one in-progress answer. Each
// inbound frame triggers an interruption check; the connection stays
// open across answers until the client closes it or the interview ends.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.orc.Session(id); err != nil {
		writeAPIError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "session_id", id, "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "connection closed")

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var msg liveMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.writeWS(ctx, conn, liveReply{Type: "error", Error: "malformed message"})
			continue
		}

		res, err := s.orc.CheckInterruption(ctx, id, orchestrator.LiveCheck{
			PartialTranscript: msg.Transcript,
			ElapsedSeconds:    msg.ElapsedSeconds,
			ClientIssues:      msg.Issues,
		})
		if err != nil {
			if errors.Is(err, orchestrator.ErrSessionCompleted) {
				conn.Close(websocket.StatusNormalClosure, "interview completed")
				return
			}
			slog.Warn("live interruption check failed", "session_id", id, "error", err)
			continue
		}
		if res == nil {
			continue
		}

		reply := liveReply{
			Type:     "warning",
			Decision: res.Decision,
			FollowUp: res.FollowUp,
		}
		if res.Decision.Action == interrupt.ActionInterrupt {
			reply.Type = "interruption"
			// Spoken mode also voices the cut-in phrase and follow-up.
			reply.QuestionAudio = s.speak(ctx, res.Decision.Phrase+" "+res.FollowUp)
		}
		s.writeWS(ctx, conn, reply)
	}
}

func (s *Server) writeWS(ctx context.Context, conn *websocket.Conn, reply liveReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		slog.Warn("live reply marshal failed", "error", err)
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Warn("live reply write failed", "error", err)
	}
}
