package adapter

import "context"

// ImageGenerator produces the redesigned room image. The model call is
// opaque to the credit ledger; the generation use case spends credits
// before invoking it and refunds them if it fails.
type ImageGenerator interface {
	Redesign(ctx context.Context, prompt string, roomImage []byte) ([]byte, error)
}
