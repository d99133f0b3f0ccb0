package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/annolab/curator/pkg/cache"
)

// Runner issues completion and embedding requests in bounded batches,
// merging cache hits with freshly computed misses in original order.
type Runner struct {
	client Client
	store  cache.Store
	logger *slog.Logger
}

// NewRunner creates a Runner over the given provider client and cache store.
func NewRunner(client Client, store cache.Store, logger *slog.Logger) *Runner {
	return &Runner{
		client: client,
		store:  store,
		logger: logger.With("system", "llm"),
	}
}

// cachedCompletion is the stored form of a completion response.
type cachedCompletion struct {
	Response  string `json:"response"`
	Reasoning string `json:"reasoning,omitempty"`
}

// RunResult reports one pass over the prompt list. Responses is always the
// same length as the input; entries belonging to a failed batch are empty
// and that batch's index appears in FailedBatches. Cost accumulates token
// charges for fresh completions only.
type RunResult struct {
	Responses     []string
	FailedBatches []int
	Cost          float64
}

// Run splits prompts into fixed-size batches preserving order. Within a
// batch, cache misses are issued as concurrent requests; fresh completions
// are written to the cache and the batch output is reassembled by positional
// index. A failure while gathering a batch withholds that batch's results
// and reports its index without affecting sibling batches.
func (r *Runner) Run(ctx context.Context, model string, prompts []Prompt, batchSize int) (*RunResult, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("invalid batch size: %d", batchSize)
	}

	result := &RunResult{
		Responses: make([]string, len(prompts)),
	}

	batches := (len(prompts) + batchSize - 1) / batchSize
	for b := 0; b < batches; b++ {
		start := b * batchSize
		end := min(start+batchSize, len(prompts))

		if err := r.runBatch(ctx, model, prompts[start:end], start, result); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Warn("batch failed", "batch", b, "error", err)
			result.FailedBatches = append(result.FailedBatches, b)

			// Withhold the whole batch: hits are still cached, so the retry
			// pass reassembles them for free.
			for i := start; i < end; i++ {
				result.Responses[i] = ""
			}
		}
	}

	return result, nil
}

func (r *Runner) runBatch(ctx context.Context, model string, batch []Prompt, offset int, result *RunResult) error {
	keys := make([]string, len(batch))
	var missIdx []int

	for i, prompt := range batch {
		key, err := promptKey(prompt)
		if err != nil {
			return err
		}
		keys[i] = key

		value, ok, err := r.store.Get(cache.NamespaceCompletion, model, key)
		if err != nil {
			return err
		}
		if ok {
			var stored cachedCompletion
			if err := json.Unmarshal(value, &stored); err != nil {
				return fmt.Errorf("decode cached completion: %w", err)
			}
			result.Responses[offset+i] = stored.Response
		} else {
			missIdx = append(missIdx, i)
		}
	}

	if len(missIdx) == 0 {
		return nil
	}

	completions := make([]*Completion, len(missIdx))
	g, gctx := errgroup.WithContext(ctx)
	for slot, i := range missIdx {
		g.Go(func() error {
			c, err := r.client.Chat(gctx, model, batch[i], DefaultOptions())
			if err != nil {
				return err
			}
			completions[slot] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for slot, i := range missIdx {
		c := completions[slot]

		stored, err := json.Marshal(cachedCompletion{
			Response:  c.Content,
			Reasoning: c.Reasoning,
		})
		if err != nil {
			return fmt.Errorf("encode completion for cache: %w", err)
		}
		if err := r.store.Put(cache.NamespaceCompletion, model, keys[i], stored); err != nil {
			return err
		}

		result.Responses[offset+i] = c.Content
		result.Cost += Cost(model, c.Usage)
	}

	return nil
}

// RunAll loops Run, reissuing failed batches until none remain. Retries are
// unbounded; cancellation via ctx is the only terminal failure path.
func (r *Runner) RunAll(ctx context.Context, model string, prompts []Prompt, batchSize int) ([]string, float64, error) {
	var total float64
	for attempt := 1; ; attempt++ {
		result, err := r.Run(ctx, model, prompts, batchSize)
		if err != nil {
			return nil, total, err
		}

		total += result.Cost
		if len(result.FailedBatches) == 0 {
			r.logger.Info("completion run finished",
				"model", model,
				"prompts", len(prompts),
				"attempts", attempt,
				"cost", total,
			)
			return result.Responses, total, nil
		}

		r.logger.Warn("reissuing failed batches",
			"model", model,
			"attempt", attempt,
			"failed", result.FailedBatches,
		)
	}
}

// EmbedAll returns one embedding vector per text in input order. Cached
// vectors are reused; the remainder is embedded in a single provider call
// and written back to the cache.
func (r *Runner) EmbedAll(ctx context.Context, model string, texts []string) ([][]float64, float64, error) {
	vectors := make([][]float64, len(texts))
	var missIdx []int

	for i, text := range texts {
		value, ok, err := r.store.Get(cache.NamespaceEmbedding, model, text)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			var vec []float64
			if err := json.Unmarshal(value, &vec); err != nil {
				return nil, 0, fmt.Errorf("decode cached embedding: %w", err)
			}
			vectors[i] = vec
		} else {
			missIdx = append(missIdx, i)
		}
	}

	if len(missIdx) == 0 {
		return vectors, 0, nil
	}

	missing := make([]string, len(missIdx))
	for slot, i := range missIdx {
		missing[slot] = texts[i]
	}

	fresh, tokens, err := r.client.Embed(ctx, model, missing)
	if err != nil {
		return nil, 0, err
	}

	for slot, i := range missIdx {
		stored, err := json.Marshal(fresh[slot])
		if err != nil {
			return nil, 0, fmt.Errorf("encode embedding for cache: %w", err)
		}
		if err := r.store.Put(cache.NamespaceEmbedding, model, texts[i], stored); err != nil {
			return nil, 0, err
		}
		vectors[i] = fresh[slot]
	}

	return vectors, EmbeddingCost(model, tokens), nil
}

// promptKey serializes a prompt into its exact cache input form. Any content
// difference, including whitespace, yields a distinct key.
func promptKey(prompt Prompt) (string, error) {
	data, err := json.Marshal(prompt)
	if err != nil {
		return "", fmt.Errorf("serialize prompt: %w", err)
	}
	return string(data), nil
}
