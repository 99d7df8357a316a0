package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coder/websocket"

	"github.com/internai/interviewd/internal/claims"
	"github.com/internai/interviewd/internal/config"
	"github.com/internai/interviewd/internal/evaluate"
	"github.com/internai/interviewd/internal/followup"
	"github.com/internai/interviewd/internal/gateway"
	"github.com/internai/interviewd/internal/interrupt"
	"github.com/internai/interviewd/internal/orchestrator"
	"github.com/internai/interviewd/internal/session"
	"github.com/internai/interviewd/pkg/audio"
	"github.com/internai/interviewd/pkg/provider/llm"
	llmmock "github.com/internai/interviewd/pkg/provider/llm/mock"
	"github.com/internai/interviewd/pkg/provider/stt"
	sttmock "github.com/internai/interviewd/pkg/provider/stt/mock"
	"github.com/internai/interviewd/pkg/provider/tts"
	ttsmock "github.com/internai/interviewd/pkg/provider/tts/mock"
)

var answerText = strings.Repeat(
	"we sharded the orders table by tenant id and dropped write latency from 300ms to 40ms ", 3)

func scriptedLLM() *llmmock.Provider {
	p := llmmock.New()
	p.RespondFunc = func(req llm.ChatRequest) (string, error) {
		switch {
		case strings.Contains(req.System, "TECHNICAL_DEPTH: [0-100]"):
			var sb strings.Builder
			for _, dim := range []string{
				"TECHNICAL_DEPTH", "CONCEPT_ACCURACY", "STRUCTURED_THINKING",
				"COMMUNICATION_CLARITY", "CONFIDENCE_CONSISTENCY",
			} {
				fmt.Fprintf(&sb, "%s: 80\n%s_EVIDENCE: solid\n\n", dim, dim)
			}
			sb.WriteString("STRENGTHS: concrete numbers\nWEAKNESSES: could go deeper\n")
			sb.WriteString("RED_FLAGS: NONE\nREQUIRES_FOLLOWUP: NO\nDIFFICULTY_ADJUSTMENT: maintain\n")
			return sb.String(), nil
		case strings.Contains(req.System, "identifying and categorizing claims"):
			return "NO_CLAIMS_FOUND", nil
		case strings.Contains(req.System, "detecting contradictions"):
			return "CONTRADICTION_FOUND: no", nil
		default:
			return "Tell me about a production incident you handled.", nil
		}
	}
	return p
}

func newTestServer(t *testing.T, cfg config.InterviewConfig, sttP stt.Provider, ttsP tts.Provider, engine *interrupt.Engine) *httptest.Server {
	t.Helper()
	gw := gateway.New(scriptedLLM(), gateway.Config{}, nil)
	orc := orchestrator.New(orchestrator.Deps{
		Manager:    session.NewManager(nil),
		Evaluator:  evaluate.New(gw, nil),
		Questions:  evaluate.NewGenerator(gw),
		FollowUps:  followup.NewGenerator(gw, nil),
		Claims:     claims.NewExtractor(gw, nil),
		Interrupts: engine,
		Gateway:    gw,
		Config:     cfg,
	})

	mux := http.NewServeMux()
	NewServer(orc, sttP, ttsP, cfg).Register(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestStartAndAnswerFlow(t *testing.T) {
	ts := newTestServer(t, config.InterviewConfig{MaxQuestions: 5, Preset: "demo"}, nil, nil, nil)

	resp := postJSON(t, ts.URL+"/v1/interviews", map[string]string{"round": "technical"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start status = %d", resp.StatusCode)
	}
	started := decode[startResponse](t, resp)
	if started.SessionID == "" || started.QuestionID != "q1" || started.Question == "" {
		t.Fatalf("started = %+v", started)
	}

	resp = postJSON(t, ts.URL+"/v1/interviews/"+started.SessionID+"/answers", answerRequest{
		QuestionID: "q1", Text: answerText, DurationSeconds: 35,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("answer status = %d", resp.StatusCode)
	}
	out := decode[answerResponse](t, resp)
	if out.Feedback.OverallScore != 80 || out.NextQuestionID != "q2" {
		t.Errorf("outcome = %+v", out.Outcome)
	}
}

func TestStartInvalidRound(t *testing.T) {
	ts := newTestServer(t, config.InterviewConfig{MaxQuestions: 5}, nil, nil, nil)
	resp := postJSON(t, ts.URL+"/v1/interviews", map[string]string{"round": "astrology"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAnswerWrongQuestionConflicts(t *testing.T) {
	ts := newTestServer(t, config.InterviewConfig{MaxQuestions: 5}, nil, nil, nil)
	started := decode[startResponse](t, postJSON(t, ts.URL+"/v1/interviews",
		map[string]string{"round": "technical"}))

	resp := postJSON(t, ts.URL+"/v1/interviews/"+started.SessionID+"/answers", answerRequest{
		QuestionID: "q7", Text: answerText,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestReportUnknownSession(t *testing.T) {
	ts := newTestServer(t, config.InterviewConfig{MaxQuestions: 5}, nil, nil, nil)
	resp, err := http.Get(ts.URL + "/v1/interviews/nope/report")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAudioAnswerTranscribed(t *testing.T) {
	sttP := sttmock.New(&stt.Result{
		Text:     answerText,
		Duration: 42,
		Segments: []stt.Segment{{Start: 0, End: 42, Text: answerText}},
	})
	ts := newTestServer(t, config.InterviewConfig{MaxQuestions: 5, Language: "en"}, sttP, nil, nil)
	started := decode[startResponse](t, postJSON(t, ts.URL+"/v1/interviews",
		map[string]string{"round": "technical"}))

	// One second of silence, wrapped as WAV.
	wav := audio.EncodeWAV(make([]byte, 32000), 16000, 1)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", "answer.wav")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fw.Write(wav)
	mw.WriteField("question_id", "q1")
	mw.Close()

	resp, err := http.Post(ts.URL+"/v1/interviews/"+started.SessionID+"/answers",
		mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	out := decode[answerResponse](t, resp)
	if out.Transcript != answerText {
		t.Errorf("transcript = %q", out.Transcript)
	}
	if sttP.CallCount() != 1 {
		t.Errorf("transcribe calls = %d", sttP.CallCount())
	}
}

func TestAudioAnswerWithoutSTTRejected(t *testing.T) {
	ts := newTestServer(t, config.InterviewConfig{MaxQuestions: 5}, nil, nil, nil)
	started := decode[startResponse](t, postJSON(t, ts.URL+"/v1/interviews",
		map[string]string{"round": "technical"}))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("audio", "answer.wav")
	fw.Write(audio.EncodeWAV(make([]byte, 320), 16000, 1))
	mw.Close()

	resp, err := http.Post(ts.URL+"/v1/interviews/"+started.SessionID+"/answers",
		mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSpokenModeAttachesQuestionAudio(t *testing.T) {
	ttsP := ttsmock.New()
	ts := newTestServer(t, config.InterviewConfig{
		MaxQuestions: 5, SpeakQuestions: true, Voice: "morgan",
	}, nil, ttsP, nil)

	started := decode[startResponse](t, postJSON(t, ts.URL+"/v1/interviews",
		map[string]string{"round": "technical"}))
	if started.QuestionAudio == nil || started.QuestionAudio.MIMEType != "audio/mpeg" {
		t.Fatalf("question audio = %+v", started.QuestionAudio)
	}
	if len(ttsP.Texts()) != 1 || ttsP.Texts()[0] != started.Introduction+" "+started.Question {
		t.Errorf("synthesized texts = %v", ttsP.Texts())
	}
}

func TestAbortRemovesSession(t *testing.T) {
	ts := newTestServer(t, config.InterviewConfig{MaxQuestions: 5}, nil, nil, nil)
	started := decode[startResponse](t, postJSON(t, ts.URL+"/v1/interviews",
		map[string]string{"round": "technical"}))

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/v1/interviews/"+started.SessionID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/v1/interviews/" + started.SessionID)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status after abort = %d, want 404", resp.StatusCode)
	}
}

func TestLiveChannelWarnsThenInterrupts(t *testing.T) {
	engine := interrupt.NewEngine(nil, nil, 2)
	ts := newTestServer(t, config.InterviewConfig{
		MaxQuestions: 5, EnableInterruptions: true, MaxInterruptions: 2,
	}, nil, nil, engine)

	started := decode[startResponse](t, postJSON(t, ts.URL+"/v1/interviews",
		map[string]string{"round": "technical"}))

	ctx := context.Background()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") +
		"/v1/interviews/" + started.SessionID + "/live"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	send := func() liveReply {
		t.Helper()
		frame, _ := json.Marshal(liveMessage{
			Type:           "partial",
			Transcript:     "well it depends",
			ElapsedSeconds: 30,
			Issues: []interrupt.ClientIssue{
				{Type: "EXCESSIVE_PAUSING", Evidence: "4 pauses over 2 seconds"},
			},
		})
		if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
			t.Fatalf("write: %v", err)
		}
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var reply liveReply
		if err := json.Unmarshal(data, &reply); err != nil {
			t.Fatalf("unmarshal reply: %v", err)
		}
		return reply
	}

	if reply := send(); reply.Type != "warning" || reply.Decision == nil {
		t.Fatalf("first reply = %+v", reply)
	}
	reply := send()
	if reply.Type != "interruption" || reply.FollowUp == "" {
		t.Fatalf("second reply = %+v", reply)
	}
	if reply.Decision.Phrase != "Let me help you focus - you seem to be struggling." {
		t.Errorf("phrase = %q", reply.Decision.Phrase)
	}
}
