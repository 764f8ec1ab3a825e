package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/civicpulse/civic-server/internal/oracle"
	"go.uber.org/zap"
)

// ChatApology is the reply returned when the assistant is unavailable.
const ChatApology = "Sorry, the assistant is unavailable right now. Please try again in a moment, or use the report form to submit your issue."

// ChatService wraps the oracle's conversational mode. It never reads or
// writes issues.
type ChatService struct {
	oracle       oracle.Oracle
	historyLimit int
	logger       *zap.SugaredLogger
}

// NewChatService creates a new chat service. historyLimit bounds how many
// prior turns are forwarded; zero or less forwards none.
func NewChatService(orc oracle.Oracle, historyLimit int, logger *zap.SugaredLogger) *ChatService {
	return &ChatService{oracle: orc, historyLimit: historyLimit, logger: logger}
}

// Chat answers one turn. Oracle failures become a degraded apology.
func (s *ChatService) Chat(ctx context.Context, message string, history []oracle.ChatTurn) (Outcome[string], error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Outcome[string]{}, fmt.Errorf("%w: message is required", ErrValidation)
	}

	reply, err := s.oracle.Chat(ctx, message, s.bound(history))
	if err != nil {
		s.logger.Warnw("Chat degraded", "error", err)
		return Degrade(ChatApology, err.Error()), nil
	}
	return Ok(strings.TrimSpace(reply)), nil
}

// bound keeps the most recent turns.
func (s *ChatService) bound(history []oracle.ChatTurn) []oracle.ChatTurn {
	if s.historyLimit <= 0 {
		return nil
	}
	if len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}
	return history
}
