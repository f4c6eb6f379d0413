package hub

import (
	"context"

	"github.com/tailored-agentic-units/tau-core/orchestrate/messaging"
)

// Participant is anything a Hub can route messages to: a unique address and
// nothing else. The hub doesn't care whether a Participant is backed by an
// LLM call, a state-graph node, or a supervised task — only that it can be
// named.
type Participant interface {
	ID() string
}

type MessageContext struct {
	HubName     string
	Participant Participant
}

type MessageHandler func(
	ctx context.Context,
	message *messaging.Message,
	context *MessageContext,
) (*messaging.Message, error)
