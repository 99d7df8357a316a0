package evaluate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/internai/interviewd/internal/gateway"
	"github.com/internai/interviewd/internal/prompt"
	"github.com/internai/interviewd/internal/session"
)

// fallbackQuestions are served when question generation hits an
// unavailable backend. Per round, cycled by question number so a broken
// backend still yields a varied interview.
var fallbackQuestions = map[session.Round][]string{
	session.RoundHR: {
		"Tell me about a challenging project you worked on and your specific role in it.",
		"Describe a time you disagreed with a teammate. How did you resolve it?",
		"What accomplishment are you most proud of, and what exactly was your contribution?",
	},
	session.RoundTechnical: {
		"Walk me through how you would debug a service whose latency suddenly doubled.",
		"Explain the difference between a process and a thread, and when the distinction matters.",
		"How does a database index speed up a query, and what does it cost you?",
	},
	session.RoundSystemDesign: {
		"Design a URL shortener. Walk me through the main components.",
		"How would you scale a read-heavy API from one server to millions of users?",
		"Design a rate limiter for a public API. What are the trade-offs?",
	},
}

// greetings open the interview per round. The first question follows in
// the same breath, so these stay short.
var greetings = map[session.Round]string{
	session.RoundHR:           "Welcome, and thanks for taking the time today. We'll go through your experience and how you work with others.",
	session.RoundTechnical:    "Welcome. Today we'll dig into your technical background, so expect follow-ups on the details.",
	session.RoundSystemDesign: "Welcome. We'll work through some design problems together; think out loud as much as you can.",
}

// Greeting returns the interviewer's opening line for a round. Unknown
// rounds use the technical greeting.
func Greeting(round session.Round) string {
	if g, ok := greetings[round]; ok {
		return g
	}
	return greetings[session.RoundTechnical]
}

// Generator produces interview questions over the shared LLM gateway.
// Safe for concurrent use.
type Generator struct {
	gw *gateway.Gateway
}

// NewGenerator returns a question Generator.
func NewGenerator(gw *gateway.Gateway) *Generator {
	return &Generator{gw: gw}
}

// Next generates the next question for the given context. questionNum
// selects the fallback question when the backend is unavailable; only
// context cancellation is returned as an error.
func (g *Generator) Next(ctx context.Context, round session.Round, qc prompt.QuestionContext, questionNum int) (string, error) {
	var req = prompt.NextQuestion(qc)
	if questionNum == 0 && len(qc.LastQuestions) == 0 {
		req = prompt.FirstQuestion(qc)
	}

	raw, err := g.gw.Chat(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, gateway.ErrBackendUnavailable) {
			q := FallbackQuestion(round, questionNum)
			slog.Warn("question generation degraded, using fallback",
				"round", round, "question_num", questionNum)
			return q, nil
		}
		return "", err
	}

	q := prompt.CleanQuestion(raw)
	if q == "" {
		return FallbackQuestion(round, questionNum), nil
	}
	return q, nil
}

// FallbackQuestion returns the canned question for a round, cycling
// through the pool by question number. Unknown rounds use the technical
// pool.
func FallbackQuestion(round session.Round, questionNum int) string {
	pool, ok := fallbackQuestions[round]
	if !ok {
		pool = fallbackQuestions[session.RoundTechnical]
	}
	if questionNum < 0 {
		questionNum = 0
	}
	return pool[questionNum%len(pool)]
}
