package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/internai/interviewd/pkg/provider/llm"
	llmmock "github.com/internai/interviewd/pkg/provider/llm/mock"
)

func TestChatReturnsContent(t *testing.T) {
	p := llmmock.New()
	p.Enqueue("hello candidate")
	g := New(p, Config{}, nil)

	got, err := g.Chat(context.Background(), llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "hello candidate" {
		t.Errorf("content = %q", got)
	}
}

func TestChatRetriesOnce(t *testing.T) {
	p := llmmock.New()
	fail := errors.New("transient")
	calls := 0
	p.RespondFunc = func(req llm.ChatRequest) (string, error) {
		calls++
		if calls == 1 {
			return "", fail
		}
		return "second try", nil
	}
	g := New(p, Config{}, nil)

	got, err := g.Chat(context.Background(), llm.ChatRequest{})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "second try" {
		t.Errorf("content = %q, want second try", got)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestChatBackendUnavailableAfterRetry(t *testing.T) {
	p := llmmock.New()
	p.Err = errors.New("connection refused")
	g := New(p, Config{}, nil)

	_, err := g.Chat(context.Background(), llm.ChatRequest{})
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("err = %v, want ErrBackendUnavailable", err)
	}
	if p.CallCount() != 2 {
		t.Errorf("calls = %d, want 2 (initial + retry)", p.CallCount())
	}
}

func TestChatCancelledContext(t *testing.T) {
	p := llmmock.New()
	g := New(p, Config{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Chat(ctx, llm.ChatRequest{})
	if !errors.Is(err, context.Canceled) && !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
