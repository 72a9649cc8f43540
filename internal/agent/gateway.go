// Package agent is the boundary to the reasoning engine. The conversation
// core consumes it as a black box: ordered role/content history in, reply
// text out.
package agent

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrEmptyReply is returned when the model produced no usable text.
var ErrEmptyReply = errors.New("agent returned an empty reply")

// Exchange is one role/content pair of agent input.
type Exchange struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Gateway produces one reply for one turn. The last history entry is the
// current user message. Implementations do not retry; retry policy belongs
// to callers above the conversation core.
type Gateway interface {
	Process(ctx context.Context, history []Exchange) (string, error)
}

// Factory builds a gateway handle per turn, bound to the requesting user so
// tool calls operate on that user's data. Handles carry no shared mutable
// state; concurrent turns are independent by construction.
type Factory interface {
	ForUser(userID uuid.UUID) Gateway
}
