package signer

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome for one token of a batch.
type BatchResult struct {
	Token *ArgusToken
	Err   error
}

// DecodeBatch decodes tokens on up to workers goroutines. Results are in
// input order; a bad token only fails its own slot. The returned error is
// non-nil only when ctx ends first, in which case the remaining slots carry
// the context error.
func (a *Argus) DecodeBatch(ctx context.Context, tokens []string, workers int) ([]BatchResult, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]BatchResult, len(tokens))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, tok := range tokens {
		i, tok := i, tok
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return err
			}
			results[i].Token, results[i].Err = a.Decode(tok)
			return nil
		})
	}
	return results, g.Wait()
}
