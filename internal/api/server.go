// Package api exposes the interview engine over HTTP: a small REST
// surface for starting interviews, submitting answers (typed or
// recorded), and fetching reports, plus a WebSocket channel for live
// interruption checks while the candidate is still speaking.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/internai/interviewd/internal/config"
	"github.com/internai/interviewd/internal/orchestrator"
	"github.com/internai/interviewd/internal/session"
	"github.com/internai/interviewd/pkg/audio"
	"github.com/internai/interviewd/pkg/provider/stt"
	"github.com/internai/interviewd/pkg/provider/tts"
)

// maxUploadBytes caps answer recordings. Ten minutes of Opus at
// browser-default bitrates stays well under this.
const maxUploadBytes = 32 << 20

// Server handles the REST and WebSocket API. STT and TTS are optional:
// without STT only typed answers are accepted, without TTS responses
// carry no question audio.
type Server struct {
	orc *orchestrator.Orchestrator
	stt stt.Provider
	tts tts.Provider
	cfg config.InterviewConfig
}

// NewServer builds a Server around the orchestrator.
func NewServer(orc *orchestrator.Orchestrator, sttP stt.Provider, ttsP tts.Provider, cfg config.InterviewConfig) *Server {
	return &Server{orc: orc, stt: sttP, tts: ttsP, cfg: cfg}
}

// Register adds all interview routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/interviews", s.handleStart)
	mux.HandleFunc("GET /v1/interviews/{id}", s.handleGet)
	mux.HandleFunc("DELETE /v1/interviews/{id}", s.handleAbort)
	mux.HandleFunc("POST /v1/interviews/{id}/answers", s.handleAnswer)
	mux.HandleFunc("GET /v1/interviews/{id}/report", s.handleReport)
	mux.HandleFunc("GET /v1/interviews/{id}/live", s.handleLive)
}

type startRequest struct {
	SessionID     string `json:"session_id,omitempty"`
	Round         string `json:"round"`
	ResumeContext string `json:"resume_context,omitempty"`
}

type startResponse struct {
	*orchestrator.Started
	QuestionAudio *audioPayload `json:"question_audio,omitempty"`
}

// audioPayload is synthesized interviewer speech, base64-encoded.
type audioPayload struct {
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	started, err := s.orc.Start(r.Context(), req.SessionID, session.Round(req.Round), req.ResumeContext)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	resp := startResponse{Started: started}
	// Spoken mode voices the greeting and the opening question together.
	resp.QuestionAudio = s.speak(r.Context(), started.Introduction+" "+started.Question)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.orc.Session(r.PathValue("id"))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleAbort(w http.ResponseWriter, r *http.Request) {
	if err := s.orc.Abort(r.Context(), r.PathValue("id")); err != nil {
		writeAPIError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type answerRequest struct {
	QuestionID      string  `json:"question_id"`
	Text            string  `json:"text"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`

	// InterruptedAt is seconds into the answer the interviewer cut in;
	// omitted or negative means the answer completed normally.
	InterruptedAt *float64 `json:"interrupted_at,omitempty"`
}

type answerResponse struct {
	*orchestrator.Outcome
	Transcript    string        `json:"transcript,omitempty"`
	QuestionAudio *audioPayload `json:"question_audio,omitempty"`
}

// handleAnswer accepts either a JSON body with a typed answer or a
// multipart form with an "audio" recording that is transcribed
// server-side.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var (
		ans        orchestrator.Answer
		transcript string
		err        error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		ans, err = s.answerFromUpload(r)
		transcript = ans.Text
	} else {
		ans, err = answerFromJSON(r)
	}
	if err != nil {
		writeAPIError(w, err)
		return
	}

	out, err := s.orc.ProcessAnswer(r.Context(), id, ans)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	resp := answerResponse{Outcome: out, Transcript: transcript}
	resp.QuestionAudio = s.speak(r.Context(), out.NextQuestion)
	writeJSON(w, http.StatusOK, resp)
}

func answerFromJSON(r *http.Request) (orchestrator.Answer, error) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return orchestrator.Answer{}, badRequest(fmt.Errorf("decode request: %w", err))
	}
	if req.Text == "" {
		return orchestrator.Answer{}, badRequest(errors.New("text must not be empty"))
	}
	ans := orchestrator.Answer{
		QuestionID:        req.QuestionID,
		Text:              req.Text,
		RecordingDuration: req.DurationSeconds,
		InterruptedAt:     -1,
	}
	if req.InterruptedAt != nil {
		ans.InterruptedAt = *req.InterruptedAt
	}
	return ans, nil
}

// answerFromUpload decodes the uploaded recording to PCM and
// transcribes it.
func (s *Server) answerFromUpload(r *http.Request) (orchestrator.Answer, error) {
	if s.stt == nil {
		return orchestrator.Answer{}, badRequest(errors.New("audio answers are not enabled on this server"))
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return orchestrator.Answer{}, badRequest(fmt.Errorf("parse form: %w", err))
	}

	f, _, err := r.FormFile("audio")
	if err != nil {
		return orchestrator.Answer{}, badRequest(fmt.Errorf("audio file: %w", err))
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return orchestrator.Answer{}, fmt.Errorf("read upload: %w", err)
	}

	pcm, err := audio.Decode(data)
	if err != nil {
		return orchestrator.Answer{}, err
	}

	result, err := s.stt.Transcribe(r.Context(), pcm, stt.TranscribeOptions{
		Language:   s.cfg.Language,
		Vocabulary: s.cfg.Vocabulary,
	})
	if err != nil {
		return orchestrator.Answer{}, fmt.Errorf("transcribe: %w", err)
	}

	ans := orchestrator.Answer{
		QuestionID:        r.FormValue("question_id"),
		Text:              result.Text,
		Segments:          result.Segments,
		RecordingDuration: result.Duration,
		InterruptedAt:     -1,
	}
	if ans.RecordingDuration == 0 {
		ans.RecordingDuration = audio.DurationSeconds(pcm)
	}
	if v := r.FormValue("interrupted_at"); v != "" {
		at, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return orchestrator.Answer{}, badRequest(fmt.Errorf("interrupted_at: %w", err))
		}
		ans.InterruptedAt = at
	}
	return ans, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.orc.FinalReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// speak synthesizes interviewer speech when spoken mode is on. TTS
// failures degrade to text-only rather than failing the request.
func (s *Server) speak(ctx context.Context, text string) *audioPayload {
	if !s.cfg.SpeakQuestions || s.tts == nil || text == "" {
		return nil
	}
	data, err := s.tts.Synthesize(ctx, text, tts.SynthesizeOptions{Voice: s.cfg.Voice})
	if err != nil {
		slog.Warn("question synthesis failed", "provider", s.tts.Name(), "error", err)
		return nil
	}
	return &audioPayload{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: s.tts.Format(),
	}
}

type apiError struct {
	status int
	err    error
}

func (e *apiError) Error() string { return e.err.Error() }
func (e *apiError) Unwrap() error { return e.err }

func badRequest(err error) error { return &apiError{status: http.StatusBadRequest, err: err} }

// writeAPIError maps engine errors to HTTP statuses.
func writeAPIError(w http.ResponseWriter, err error) {
	var ae *apiError
	switch {
	case errors.As(err, &ae):
		writeError(w, ae.status, ae.err)
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, session.ErrSessionExists),
		errors.Is(err, orchestrator.ErrInvalidTransition),
		errors.Is(err, orchestrator.ErrSessionCompleted):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, orchestrator.ErrInvalidRound):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, audio.ErrUnknownFormat):
		writeError(w, http.StatusUnsupportedMediaType, err)
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "error", err)
	}
}
