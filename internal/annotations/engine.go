package annotations

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/annolab/curator/internal/identity"
	"github.com/annolab/curator/internal/models"
	"github.com/annolab/curator/internal/prompts"
	"github.com/annolab/curator/pkg/clustering"
	"github.com/annolab/curator/pkg/formatting"
	"github.com/annolab/curator/pkg/llm"
	"github.com/annolab/curator/pkg/pagination"
	"github.com/annolab/curator/pkg/storage"
)

type engine struct {
	identity identity.System
	models   models.System
	prompts  prompts.System
	runner   *llm.Runner
	provider *llm.Config
	storage  storage.System
	records  *records
	logger   *slog.Logger

	topicalClusters int
}

// New creates an annotation engine implementing the System interface.
// store may be nil, in which case run snapshots are not uploaded.
func New(
	db *sql.DB,
	ids identity.System,
	mods models.System,
	pr prompts.System,
	runner *llm.Runner,
	provider *llm.Config,
	store storage.System,
	logger *slog.Logger,
	page pagination.Config,
	topicalClusters int,
) System {
	logger = logger.With("system", "annotations")
	return &engine{
		identity: ids,
		models:   mods,
		prompts:  pr,
		runner:   runner,
		provider: provider,
		storage:  store,
		records: &records{
			db:         db,
			logger:     logger,
			pagination: page,
		},
		logger:          logger,
		topicalClusters: topicalClusters,
	}
}

func (e *engine) Handler() *Handler {
	return NewHandler(e, e.logger, e.records.pagination)
}

func (e *engine) AnnotateBatch(ctx context.Context, cmd AnnotateCommand) (*Result, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	uids, err := e.identity.ResolveBatch(ctx, cmd.TaskID, cmd.Examples)
	if err != nil {
		return nil, err
	}

	vectors, embedCost, err := e.runner.EmbedAll(ctx, e.provider.EmbeddingModel, cmd.Examples)
	if err != nil {
		return nil, err
	}

	model, err := e.models.FitOnce(ctx, cmd.TaskID, models.PurposeTopical, func(context.Context) (*models.Model, error) {
		return e.fitTopical(vectors)
	})
	if err != nil {
		return nil, err
	}

	clusters, err := model.Predict(vectors)
	if err != nil {
		return nil, err
	}

	requests := make([]llm.Prompt, len(cmd.Examples))
	for i, text := range cmd.Examples {
		requests[i], err = e.prompts.Annotation(ctx, cmd.Guideline, text)
		if err != nil {
			return nil, err
		}
	}

	responses, runCost, err := e.runner.RunAll(ctx, e.provider.CompletionModel, requests, e.provider.BatchSize)
	if err != nil {
		return nil, err
	}

	recs := make([]Record, len(cmd.Examples))
	for i, text := range cmd.Examples {
		proj, err := model.Project(vectors[i])
		if err != nil {
			return nil, err
		}

		out, salvaged := parseAnnotation(responses[i])
		if salvaged {
			e.logger.Warn("annotation response salvaged", "task", cmd.TaskID, "uid", uids[i])
		}

		recs[i] = Record{
			TaskID:               cmd.TaskID,
			Round:                cmd.Round,
			UID:                  uids[i],
			Text:                 text,
			Cluster:              clusters[i],
			PcaX:                 finite(proj[0]),
			PcaY:                 finite(proj[1]),
			Raw:                  responses[i],
			Analysis:             out.Analysis,
			Label:                out.Label,
			Confidence:           out.Confidence,
			NewEdgeCase:          out.NewEdgeCase,
			GuidelineImprovement: out.GuidelineImprovement,
			Salvaged:             salvaged,
		}
	}

	if err := e.records.saveBatch(ctx, recs); err != nil {
		return nil, err
	}

	result := &Result{Annotations: recs, Cost: embedCost + runCost}
	e.snapshot(ctx, cmd.TaskID, cmd.Round, result)
	return result, nil
}

func (e *engine) AnnotateOne(ctx context.Context, cmd AnnotateCommand) (*Result, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}
	if len(cmd.Examples) != 1 {
		return nil, fmt.Errorf("%w: exactly one example required", ErrInvalidRequest)
	}

	// A single point cannot fit a stable clustering; an existing topical
	// model is a hard prerequisite here.
	model, err := e.models.Find(ctx, cmd.TaskID, models.PurposeTopical)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: task %s", ErrNoModel, cmd.TaskID)
		}
		return nil, err
	}

	text := cmd.Examples[0]
	uid, err := e.identity.Resolve(ctx, cmd.TaskID, text)
	if err != nil {
		return nil, err
	}

	vectors, embedCost, err := e.runner.EmbedAll(ctx, e.provider.EmbeddingModel, []string{text})
	if err != nil {
		return nil, err
	}

	cluster, err := model.PredictOne(vectors[0])
	if err != nil {
		return nil, err
	}
	proj, err := model.Project(vectors[0])
	if err != nil {
		return nil, err
	}

	request, err := e.prompts.Annotation(ctx, cmd.Guideline, text)
	if err != nil {
		return nil, err
	}

	responses, runCost, err := e.runner.RunAll(ctx, e.provider.CompletionModel, []llm.Prompt{request}, e.provider.BatchSize)
	if err != nil {
		return nil, err
	}

	out, salvaged := parseAnnotation(responses[0])
	if salvaged {
		e.logger.Warn("annotation response salvaged", "task", cmd.TaskID, "uid", uid)
	}

	rec := Record{
		TaskID:               cmd.TaskID,
		Round:                cmd.Round,
		UID:                  uid,
		Text:                 text,
		Cluster:              cluster,
		PcaX:                 finite(proj[0]),
		PcaY:                 finite(proj[1]),
		Raw:                  responses[0],
		Analysis:             out.Analysis,
		Label:                out.Label,
		Confidence:           out.Confidence,
		NewEdgeCase:          out.NewEdgeCase,
		GuidelineImprovement: out.GuidelineImprovement,
		Salvaged:             salvaged,
	}

	if out.NewEdgeCase {
		cost, err := e.projectEdgeCase(ctx, cmd.TaskID, &rec)
		if err != nil {
			return nil, err
		}
		embedCost += cost
	}

	if err := e.records.saveBatch(ctx, []Record{rec}); err != nil {
		return nil, err
	}

	result := &Result{Annotations: []Record{rec}, Cost: embedCost + runCost}
	e.snapshot(ctx, cmd.TaskID, cmd.Round, result)
	return result, nil
}

func (e *engine) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	return e.records.list(ctx, page, filters)
}

// projectEdgeCase maps the record's rule condition into the task's semantic
// model space when that model exists. Absent model leaves the projection
// unset.
func (e *engine) projectEdgeCase(ctx context.Context, taskID string, rec *Record) (float64, error) {
	semantic, err := e.models.Find(ctx, taskID, models.PurposeSemantic)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	condition := formatting.RuleCondition(rec.GuidelineImprovement)
	vectors, cost, err := e.runner.EmbedAll(ctx, e.provider.EmbeddingModel, []string{condition})
	if err != nil {
		return 0, err
	}

	proj, err := semantic.Project(vectors[0])
	if err != nil {
		return 0, err
	}

	rec.EdgeCasePcaX = finite(proj[0])
	rec.EdgeCasePcaY = finite(proj[1])
	return cost, nil
}

func (e *engine) fitTopical(vectors [][]float64) (*models.Model, error) {
	k := min(e.topicalClusters, len(vectors))

	km, _, err := clustering.FitKMeans(vectors, k)
	if err != nil {
		return nil, err
	}

	pca, _, err := clustering.FitPCA(vectors)
	if err != nil {
		return nil, err
	}

	return &models.Model{KMeans: km, PCA: pca}, nil
}

// snapshot uploads the run result as a JSON artifact. Upload failures are
// logged, not surfaced; the run itself already succeeded.
func (e *engine) snapshot(ctx context.Context, taskID string, round int, result *Result) {
	if e.storage == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		e.logger.Warn("snapshot encode failed", "task", taskID, "error", err)
		return
	}

	key := fmt.Sprintf(
		"annotations/%s/round_%d_%s.json",
		taskID, round, time.Now().UTC().Format("20060102_150405"),
	)
	if err := e.storage.Upload(ctx, key, bytes.NewReader(payload), "application/json"); err != nil {
		e.logger.Warn("snapshot upload failed", "task", taskID, "key", key, "error", err)
	}
}

func validateCommand(cmd AnnotateCommand) error {
	if cmd.TaskID == "" {
		return fmt.Errorf("%w: task id is required", ErrInvalidRequest)
	}
	if len(cmd.Examples) == 0 {
		return fmt.Errorf("%w: empty input", ErrInvalidRequest)
	}
	return nil
}

// finite sanitizes non-finite floats to null for the wire format.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
