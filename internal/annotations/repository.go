package annotations

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/annolab/curator/pkg/pagination"
	"github.com/annolab/curator/pkg/query"
	"github.com/annolab/curator/pkg/repository"
)

// records is the persistence layer for annotation records.
type records struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

func (r *records) saveBatch(ctx context.Context, recs []Record) error {
	q := `
		INSERT INTO annotations(
			id, task_id, round, uid, text, cluster, pca_x, pca_y, raw,
			analysis, label, confidence, new_edge_case, guideline_improvement,
			salvaged, edge_case_pca_x, edge_case_pca_y
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		for i := range recs {
			rec := &recs[i]
			if rec.ID == uuid.Nil {
				rec.ID = uuid.New()
			}

			if _, err := tx.ExecContext(ctx, q,
				rec.ID, rec.TaskID, rec.Round, rec.UID, rec.Text, rec.Cluster,
				rec.PcaX, rec.PcaY, rec.Raw, rec.Analysis, rec.Label,
				rec.Confidence, rec.NewEdgeCase, rec.GuidelineImprovement,
				rec.Salvaged, rec.EdgeCasePcaX, rec.EdgeCasePcaY,
			); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("annotation records saved", "count", len(recs))
	return nil
}

func (r *records) list(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Text", "GuidelineImprovement")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count annotations: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	recs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}

	result := pagination.NewPageResult(recs, total, page.Page, page.PageSize)
	return &result, nil
}
