package domain

import "context"

// TextOracle is the external generative-text service consulted during
// category reconciliation. It is treated as text in, text out; all
// structure is imposed by the caller's parser.
type TextOracle interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
