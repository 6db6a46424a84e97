package mychem

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentBatches bounds the fan-out of chunked POST requests.
const maxConcurrentBatches = 4

// PostQuery resolves a list of identifiers via POST /query.
// Lists longer than MaxBatchSize are split into chunks which are fetched
// concurrently and merged in input order. A failed chunk does not stop the
// others; partial results are returned together with the first error.
func (c *Client) PostQuery(ctx context.Context, ids []string, opts map[string]any) ([]json.RawMessage, error) {
	return c.postBatched(ctx, "query", ids, opts)
}

// PostChem fetches annotations for a list of identifiers via POST /chem,
// with the same chunking behavior as PostQuery.
func (c *Client) PostChem(ctx context.Context, ids []string, opts map[string]any) ([]json.RawMessage, error) {
	return c.postBatched(ctx, "chem", ids, opts)
}

func (c *Client) postBatched(ctx context.Context, endpoint string, ids []string, opts map[string]any) ([]json.RawMessage, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	chunks := chunkIDs(ids, MaxBatchSize)
	if len(chunks) > 1 {
		logger.ContextKV(ctx, xlog.DEBUG,
			"endpoint", endpoint,
			"ids", len(ids),
			"batches", len(chunks),
		)
	}

	results := make([][]json.RawMessage, len(chunks))

	// Deliberately not errgroup.WithContext: one failed chunk must not
	// cancel its siblings.
	var g errgroup.Group
	g.SetLimit(maxConcurrentBatches)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			body := make(map[string]any, len(opts)+1)
			for k, v := range opts {
				body[k] = v
			}
			body["ids"] = chunk

			raw, err := c.Post(ctx, endpoint, body)
			if err != nil {
				return errors.WithMessagef(err, "batch %d of %d", i+1, len(chunks))
			}
			var records []json.RawMessage
			if err := json.Unmarshal(raw, &records); err != nil {
				return errors.WithMessagef(ErrUpstream, "batch %d of %d: unexpected response: %s", i+1, len(chunks), err.Error())
			}
			results[i] = records
			return nil
		})
	}
	err := g.Wait()

	var merged []json.RawMessage
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged, err
}

func chunkIDs(ids []string, size int) [][]string {
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	return append(chunks, ids)
}
