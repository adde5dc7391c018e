package ai

import "context"

// Runtime is the chat-completion capability the Assistant depends on.
// *Client implements it; tests substitute stubs.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}
