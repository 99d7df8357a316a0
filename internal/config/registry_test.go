package config

import (
	"errors"
	"testing"

	"github.com/internai/interviewd/pkg/provider/llm"
	llmmock "github.com/internai/interviewd/pkg/provider/llm/mock"
)

func TestRegistryCreateLLM(t *testing.T) {
	r := NewRegistry()
	r.RegisterLLM("mock", func(entry ProviderEntry) (llm.Provider, error) {
		return llmmock.New(), nil
	})

	p, err := r.CreateLLM(ProviderEntry{Name: "mock"})
	if err != nil {
		t.Fatalf("CreateLLM: %v", err)
	}
	if p == nil {
		t.Fatal("CreateLLM returned nil provider")
	}
}

func TestRegistryUnregisteredName(t *testing.T) {
	r := NewRegistry()
	_, err := r.CreateLLM(ProviderEntry{Name: "nope"})
	if !errors.Is(err, ErrProviderNotRegistered) {
		t.Fatalf("err = %v, want ErrProviderNotRegistered", err)
	}
	_, err = r.CreateSTT(ProviderEntry{Name: "nope"})
	if !errors.Is(err, ErrProviderNotRegistered) {
		t.Fatalf("err = %v, want ErrProviderNotRegistered", err)
	}
	_, err = r.CreateTTS(ProviderEntry{Name: "nope"})
	if !errors.Is(err, ErrProviderNotRegistered) {
		t.Fatalf("err = %v, want ErrProviderNotRegistered", err)
	}
	_, err = r.CreateEmbeddings(ProviderEntry{Name: "nope"})
	if !errors.Is(err, ErrProviderNotRegistered) {
		t.Fatalf("err = %v, want ErrProviderNotRegistered", err)
	}
}

func TestRegistryOverwrite(t *testing.T) {
	r := NewRegistry()
	first := llmmock.New()
	second := llmmock.New()
	r.RegisterLLM("mock", func(ProviderEntry) (llm.Provider, error) { return first, nil })
	r.RegisterLLM("mock", func(ProviderEntry) (llm.Provider, error) { return second, nil })

	p, err := r.CreateLLM(ProviderEntry{Name: "mock"})
	if err != nil {
		t.Fatalf("CreateLLM: %v", err)
	}
	if p != llm.Provider(second) {
		t.Error("expected the second registration to win")
	}
}
