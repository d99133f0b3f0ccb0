package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/annolab/curator/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a clustering model repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "models"),
		locks:  make(map[string]*sync.Mutex),
	}
}

func (r *repo) Find(ctx context.Context, taskID string, purpose Purpose) (*Model, error) {
	if !purpose.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPurpose, purpose)
	}

	var payload []byte
	var fittedAt time.Time
	err := r.db.QueryRowContext(
		ctx,
		"SELECT model, fitted_at FROM cluster_models WHERE task_id = $1 AND purpose = $2",
		taskID, string(purpose),
	).Scan(&payload, &fittedAt)

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	var m Model
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("%w: decode model for %s/%s: %v", ErrCorrupt, taskID, purpose, err)
	}

	m.TaskID = taskID
	m.Purpose = purpose
	m.FittedAt = fittedAt
	return &m, nil
}

func (r *repo) FitOnce(ctx context.Context, taskID string, purpose Purpose, fit FitFunc) (*Model, error) {
	lock := r.lock(taskID, purpose)
	lock.Lock()
	defer lock.Unlock()

	m, err := r.Find(ctx, taskID, purpose)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	fitted, err := fit(ctx)
	if err != nil {
		return nil, fmt.Errorf("fit %s model for task %s: %w", purpose, taskID, err)
	}

	fitted.TaskID = taskID
	fitted.Purpose = purpose
	fitted.FittedAt = time.Now().UTC()

	if err := r.save(ctx, fitted); err != nil {
		// Another process persisted first; its model wins.
		if errors.Is(err, ErrDuplicate) {
			r.logger.Warn("concurrent model fit lost the write race", "task", taskID, "purpose", purpose)
			return r.Find(ctx, taskID, purpose)
		}
		return nil, err
	}

	r.logger.Info("clustering model fitted", "task", taskID, "purpose", purpose)
	return fitted, nil
}

func (r *repo) save(ctx context.Context, m *Model) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	_, err = r.db.ExecContext(
		ctx,
		"INSERT INTO cluster_models(task_id, purpose, model, fitted_at) VALUES ($1, $2, $3, $4)",
		m.TaskID, string(m.Purpose), payload, m.FittedAt,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (r *repo) lock(taskID string, purpose Purpose) *sync.Mutex {
	key := taskID + "/" + string(purpose)

	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	return l
}
