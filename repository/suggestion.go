package repository

import "context"

// SuggestionCache memoizes model-generated task advice per owner and prompt.
// A miss is returned as ("", false), never as an error.
type SuggestionCache interface {
	Get(ctx context.Context, ownerID, prompt string) (string, bool, error)
	Set(ctx context.Context, ownerID, prompt, suggestion string) error
}
