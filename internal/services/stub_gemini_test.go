package services

import (
	"context"
	"sync"
)

// stubGemini answers GeminiService calls from funcs set per test.
type stubGemini struct {
	mu      sync.Mutex
	prompts []string

	json  func(prompt string) (string, error)
	embed func(text string) ([]float32, error)
}

func (s *stubGemini) record(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
}

func (s *stubGemini) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if s.embed == nil {
		return []float32{1, 0}, nil
	}
	return s.embed(text)
}

func (s *stubGemini) GenerateJSON(_ context.Context, prompt string, _ float32) (string, error) {
	s.record(prompt)
	return s.json(prompt)
}

func (s *stubGemini) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func replyWith(body string) func(string) (string, error) {
	return func(string) (string, error) { return body, nil }
}
