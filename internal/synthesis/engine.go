package synthesis

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/annolab/curator/internal/models"
	"github.com/annolab/curator/internal/prompts"
	"github.com/annolab/curator/pkg/clustering"
	"github.com/annolab/curator/pkg/formatting"
	"github.com/annolab/curator/pkg/llm"
	"github.com/annolab/curator/pkg/pagination"
	"github.com/annolab/curator/pkg/storage"
)

// emptySentinel marks records that carry no edge-case rule.
const emptySentinel = "EMPTY"

// rulesPerCluster is the target cluster occupancy driving cluster count.
const rulesPerCluster = 15

type engine struct {
	models     models.System
	prompts    prompts.System
	runner     *llm.Runner
	provider   *llm.Config
	storage    storage.System
	store      categoryStore
	pagination pagination.Config
	logger     *slog.Logger
}

// New creates a synthesis engine implementing the System interface.
// blob may be nil, in which case run snapshots are not uploaded.
func New(
	db *sql.DB,
	mods models.System,
	pr prompts.System,
	runner *llm.Runner,
	provider *llm.Config,
	blob storage.System,
	logger *slog.Logger,
	page pagination.Config,
) System {
	logger = logger.With("system", "synthesis")
	return &engine{
		models:   mods,
		prompts:  pr,
		runner:   runner,
		provider: provider,
		storage:  blob,
		store: &store{
			db:         db,
			logger:     logger,
			pagination: page,
		},
		pagination: page,
		logger:     logger,
	}
}

func (e *engine) Handler() *Handler {
	return NewHandler(e, e.logger, e.pagination)
}

func (e *engine) ListCategories(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Category], error) {
	return e.store.listCategories(ctx, page, filters)
}

func (e *engine) Synthesize(ctx context.Context, cmd SynthesizeCommand) (*Result, error) {
	if cmd.TaskID == "" {
		return nil, fmt.Errorf("%w: task id is required", ErrInvalidRequest)
	}
	if len(cmd.Records) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidRequest)
	}
	if cmd.Guideline == "" {
		return nil, fmt.Errorf("%w: annotation guideline is required", ErrInvalidRequest)
	}

	kept := filterEdgeCases(cmd.Records)
	e.logger.Info("synthesis started", "task", cmd.TaskID, "records", len(cmd.Records), "edge_cases", len(kept))

	switch len(kept) {
	case 0:
		return &Result{
			Suggestions:         map[string]string{},
			ImprovementClusters: []ClusteredRecord{},
		}, nil
	case 1:
		return e.single(ctx, cmd, kept[0])
	}

	return e.synthesize(ctx, cmd, kept)
}

// single handles the one-rule shortcut: the rule becomes its own category
// with a fixed origin projection, and no clustering model is fit or touched.
func (e *engine) single(ctx context.Context, cmd SynthesizeCommand, rec InputRecord) (*Result, error) {
	desc := rec.GuidelineImprovement
	id := 0
	zero := 0.0

	clustered := ClusteredRecord{
		Text:                 rec.Text,
		UID:                  rec.UID,
		EdgeCaseID:           &id,
		PcaX:                 &zero,
		PcaY:                 &zero,
		Raw:                  rec.Raw,
		Analysis:             rec.Analysis,
		Label:                rec.Label,
		Confidence:           rec.Confidence,
		GuidelineImprovement: desc,
		LowLevelImprovement:  desc,
	}

	if err := e.persist(ctx, cmd, []Category{{
		TaskID:      cmd.TaskID,
		Round:       cmd.Round,
		EdgeCaseID:  id,
		Description: desc,
		MemberUIDs:  []uuid.UUID{rec.UID},
	}}); err != nil {
		return nil, err
	}

	result := &Result{
		Suggestions:         map[string]string{"edge_case_0": desc},
		ImprovementClusters: []ClusteredRecord{clustered},
	}
	e.snapshot(ctx, cmd.TaskID, cmd.Round, result)
	return result, nil
}

func (e *engine) synthesize(ctx context.Context, cmd SynthesizeCommand, kept []InputRecord) (*Result, error) {
	conditions := make([]string, len(kept))
	for i, rec := range kept {
		conditions[i] = formatting.RuleCondition(rec.GuidelineImprovement)
	}

	vectors, cost, err := e.runner.EmbedAll(ctx, e.provider.EmbeddingModel, conditions)
	if err != nil {
		return nil, err
	}

	n := len(kept)
	k := n/rulesPerCluster + 1

	model, err := e.models.FitOnce(ctx, cmd.TaskID, models.PurposeSemantic, func(context.Context) (*models.Model, error) {
		return fitSemantic(vectors, k, n)
	})
	if err != nil {
		return nil, err
	}

	labels, err := model.Predict(vectors)
	if err != nil {
		return nil, err
	}

	projections := make([][]float64, n)
	for i, vec := range vectors {
		if projections[i], err = model.Project(vec); err != nil {
			return nil, err
		}
	}

	// Group kept indices by cluster, then categorize each occupied cluster.
	clusters := make([][]int, model.Clusters())
	for i, label := range labels {
		if label >= 0 && label < len(clusters) {
			clusters[label] = append(clusters[label], i)
		}
	}

	var occupied [][]int
	var requests []llm.Prompt
	for _, members := range clusters {
		if len(members) == 0 {
			continue
		}

		rules := make([]string, len(members))
		for j, i := range members {
			rules[j] = kept[i].GuidelineImprovement
		}

		request, err := e.prompts.Aggregation(ctx, cmd.Guideline, rules)
		if err != nil {
			return nil, err
		}
		occupied = append(occupied, members)
		requests = append(requests, request)
	}

	responses, runCost, err := e.runner.RunAll(ctx, e.provider.AggregateModel, requests, e.provider.BatchSize)
	if err != nil {
		return nil, err
	}
	cost += runCost

	categories := e.categorize(cmd.TaskID, occupied, responses, kept)

	if len(occupied) > 1 {
		mergeCost, err := e.merge(ctx, cmd.Guideline, categories)
		if err != nil {
			return nil, err
		}
		cost += mergeCost
	}

	return e.finalize(ctx, cmd, kept, projections, categories, cost)
}

// orderedCategories preserves first-seen insertion order of category keys
// while unioning member uids under recurring descriptions.
type orderedCategories struct {
	keys    []string
	members map[string][]uuid.UUID
}

func (o *orderedCategories) add(key string, uids []uuid.UUID) {
	if _, ok := o.members[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.members[key] = append(o.members[key], uids...)
}

// categorize applies each cluster's aggregation response, resolving 1-based
// rule indices to record uids. Indices beyond the cluster's size are
// discarded.
func (e *engine) categorize(taskID string, occupied [][]int, responses []string, kept []InputRecord) *orderedCategories {
	categories := &orderedCategories{members: make(map[string][]uuid.UUID)}

	for ci, response := range responses {
		members := occupied[ci]

		for _, cat := range parseAggregation(response) {
			if cat.EdgeCases == nil {
				continue
			}

			var uids []uuid.UUID
			for _, idx := range cat.EdgeCases {
				if idx >= 1 && idx <= len(members) {
					uids = append(uids, kept[members[idx-1]].UID)
				} else {
					e.logger.Warn("aggregation index out of range", "task", taskID, "index", idx, "cluster_size", len(members))
				}
			}
			categories.add(cat.Description, uids)
		}
	}

	return categories
}

// merge asks the LLM to group near-duplicate category descriptions and
// reassigns members under each group's merged description. Categories in no
// group keep their original key.
func (e *engine) merge(ctx context.Context, guideline string, categories *orderedCategories) (float64, error) {
	request, err := e.prompts.Merge(ctx, guideline, categories.keys)
	if err != nil {
		return 0, err
	}

	responses, cost, err := e.runner.RunAll(ctx, e.provider.AggregateModel, []llm.Prompt{request}, e.provider.BatchSize)
	if err != nil {
		return 0, err
	}

	groups := parseMerge(responses[0])
	if len(groups) == 0 {
		return cost, nil
	}

	merged := &orderedCategories{members: make(map[string][]uuid.UUID)}
	for i, key := range categories.keys {
		finalKey := key
		for _, g := range groups {
			if slices.Contains(g.Members, i+1) {
				finalKey = g.Rule
				break
			}
		}
		merged.add(finalKey, categories.members[key])
	}

	*categories = *merged
	return cost, nil
}

type assignment struct {
	id   int
	desc string
}

func (e *engine) finalize(
	ctx context.Context,
	cmd SynthesizeCommand,
	kept []InputRecord,
	projections [][]float64,
	categories *orderedCategories,
	cost float64,
) (*Result, error) {
	suggestions := make(map[string]string, len(categories.keys))
	assignments := make(map[uuid.UUID]assignment)
	persisted := make([]Category, 0, len(categories.keys))

	for id, key := range categories.keys {
		suggestions[fmt.Sprintf("edge_case_%d", id)] = key
		persisted = append(persisted, Category{
			TaskID:      cmd.TaskID,
			Round:       cmd.Round,
			EdgeCaseID:  id,
			Description: key,
			MemberUIDs:  categories.members[key],
		})

		for _, uid := range categories.members[key] {
			assignments[uid] = assignment{id: id, desc: key}
		}
	}

	if err := e.persist(ctx, cmd, persisted); err != nil {
		return nil, err
	}

	clustered := make([]ClusteredRecord, len(kept))
	dropped := 0
	for i, rec := range kept {
		clustered[i] = ClusteredRecord{
			Text:                rec.Text,
			UID:                 rec.UID,
			PcaX:                finite(projections[i][0]),
			PcaY:                finite(projections[i][1]),
			Raw:                 rec.Raw,
			Analysis:            rec.Analysis,
			Label:               rec.Label,
			Confidence:          rec.Confidence,
			LowLevelImprovement: rec.GuidelineImprovement,
		}

		if a, ok := assignments[rec.UID]; ok {
			id := a.id
			clustered[i].EdgeCaseID = &id
			clustered[i].GuidelineImprovement = a.desc
		} else {
			dropped++
		}
	}

	if dropped > 0 {
		e.logger.Warn("edge cases dropped by categorization", "task", cmd.TaskID, "dropped", dropped)
	}

	result := &Result{
		Suggestions:         suggestions,
		ImprovementClusters: clustered,
		DroppedEdgeCases:    dropped,
		Cost:                cost,
	}
	e.snapshot(ctx, cmd.TaskID, cmd.Round, result)
	return result, nil
}

// persist saves the run's categories and writes edge-case assignments back
// onto the owning annotation records.
func (e *engine) persist(ctx context.Context, cmd SynthesizeCommand, cats []Category) error {
	if err := e.store.saveCategories(ctx, cats); err != nil {
		return err
	}

	for _, cat := range cats {
		for _, uid := range cat.MemberUIDs {
			if err := e.store.assignEdgeCase(ctx, cmd.TaskID, uid, cat.EdgeCaseID, cat.Description); err != nil {
				return err
			}
		}
	}
	return nil
}

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
		"synthesis/%s/round_%d_%s.json",
		taskID, round, time.Now().UTC().Format("20060102_150405"),
	)
	if err := e.storage.Upload(ctx, key, bytes.NewReader(payload), "application/json"); err != nil {
		e.logger.Warn("snapshot upload failed", "task", taskID, "key", key, "error", err)
	}
}

// filterEdgeCases keeps records whose improvement text is not the EMPTY
// sentinel.
func filterEdgeCases(records []InputRecord) []InputRecord {
	var kept []InputRecord
	for _, rec := range records {
		if strings.ToUpper(strings.TrimSpace(rec.GuidelineImprovement)) != emptySentinel {
			kept = append(kept, rec)
		}
	}
	return kept
}

// fitSemantic fits the size-constrained clustering and co-fit projector for
// a first-time synthesis run. Size bounds step with n to prevent degenerate
// clusters while staying permissive at small n.
func fitSemantic(vectors [][]float64, k, n int) (*models.Model, error) {
	var sizeMin, sizeMax int
	switch {
	case n <= 20:
		sizeMin, sizeMax = 0, 0
	case n <= 40:
		sizeMin, sizeMax = 5, 20
	default:
		sizeMin, sizeMax = 10, 20
	}

	constrained, _, err := clustering.FitConstrained(vectors, k, sizeMin, sizeMax)
	if err != nil {
		return nil, err
	}

	pca, _, err := clustering.FitPCA(vectors)
	if err != nil {
		return nil, err
	}

	return &models.Model{Constrained: constrained, PCA: pca}, nil
}

// finite sanitizes non-finite floats to null for the wire format.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
