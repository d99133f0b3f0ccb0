package synthesis

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/annolab/curator/pkg/pagination"
	"github.com/annolab/curator/pkg/query"
	"github.com/annolab/curator/pkg/repository"
)

// categoryStore is the persistence surface the engine writes through.
type categoryStore interface {
	saveCategories(ctx context.Context, cats []Category) error
	assignEdgeCase(ctx context.Context, taskID string, uid uuid.UUID, edgeCaseID int, improvement string) error
	listCategories(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Category], error)
}

// store is the persistence layer for synthesized categories and the
// edge-case write-back onto annotation records.
type store struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

func (s *store) saveCategories(ctx context.Context, cats []Category) error {
	q := `
		INSERT INTO edge_case_categories(id, task_id, round, edge_case_id, description, member_uids)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		for i := range cats {
			cat := &cats[i]
			if cat.ID == uuid.Nil {
				cat.ID = uuid.New()
			}

			members, err := json.Marshal(cat.MemberUIDs)
			if err != nil {
				return struct{}{}, fmt.Errorf("encode member uids: %w", err)
			}

			if _, err := tx.ExecContext(ctx, q,
				cat.ID, cat.TaskID, cat.Round, cat.EdgeCaseID, cat.Description, members,
			); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	s.logger.Info("categories saved", "count", len(cats))
	return nil
}

// assignEdgeCase writes the category id and rewritten improvement text back
// onto the owning annotation record.
func (s *store) assignEdgeCase(ctx context.Context, taskID string, uid uuid.UUID, edgeCaseID int, improvement string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE annotations
		 SET edge_case_id = $1, guideline_improvement = $2
		 WHERE task_id = $3 AND uid = $4`,
		edgeCaseID, improvement, taskID, uid,
	)
	if err != nil {
		return fmt.Errorf("assign edge case %d to %s: %w", edgeCaseID, uid, err)
	}
	return nil
}

func (s *store) listCategories(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Category], error) {
	page.Normalize(s.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	cats, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanCategory)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}

	result := pagination.NewPageResult(cats, total, page.Page, page.PageSize)
	return &result, nil
}

func scanCategory(s repository.Scanner) (Category, error) {
	var c Category
	var members []byte

	err := s.Scan(
		&c.ID,
		&c.TaskID,
		&c.Round,
		&c.EdgeCaseID,
		&c.Description,
		&members,
		&c.CreatedAt,
	)
	if err != nil {
		return c, err
	}

	if err := json.Unmarshal(members, &c.MemberUIDs); err != nil {
		return c, fmt.Errorf("decode member uids: %w", err)
	}
	return c, nil
}
