// Package oracletest provides a scripted Oracle for service and handler tests.
package oracletest

import (
	"context"
	"sync"

	"github.com/civicpulse/civic-server/internal/models"
	"github.com/civicpulse/civic-server/internal/oracle"
)

// Fake returns the configured answers and counts calls per method.
type Fake struct {
	mu sync.Mutex

	Classification *oracle.RawClassification
	ClassifyErr    error
	Suggestions    []oracle.Suggestion
	SuggestErr     error
	Verdict        *oracle.Verdict
	VerifyErr      error
	Reply          string
	ChatErr        error

	calls       map[string]int
	LastHint    string
	LastBefore  models.Image
	LastAfter   models.Image
	LastHistory []oracle.ChatTurn
}

var _ oracle.Oracle = (*Fake)(nil)

func (f *Fake) record(method string) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[method]++
}

// Calls returns how many times method was invoked.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *Fake) Classify(ctx context.Context, img models.Image, titleHint string) (*oracle.RawClassification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Classify")
	f.LastHint = titleHint
	if f.ClassifyErr != nil {
		return nil, f.ClassifyErr
	}
	c := *f.Classification
	return &c, nil
}

func (f *Fake) Suggest(ctx context.Context, img models.Image) ([]oracle.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Suggest")
	if f.SuggestErr != nil {
		return nil, f.SuggestErr
	}
	return append([]oracle.Suggestion(nil), f.Suggestions...), nil
}

func (f *Fake) Verify(ctx context.Context, before, after models.Image) (*oracle.Verdict, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Verify")
	f.LastBefore, f.LastAfter = before, after
	if f.VerifyErr != nil {
		return nil, f.VerifyErr
	}
	v := *f.Verdict
	return &v, nil
}

func (f *Fake) Chat(ctx context.Context, message string, history []oracle.ChatTurn) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Chat")
	f.LastHistory = append([]oracle.ChatTurn(nil), history...)
	if f.ChatErr != nil {
		return "", f.ChatErr
	}
	return f.Reply, nil
}
