package identity

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/annolab/curator/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an identity repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "identity"),
	}
}

func (r *repo) Resolve(ctx context.Context, taskID, text string) (uuid.UUID, error) {
	uids, err := r.ResolveBatch(ctx, taskID, []string{text})
	if err != nil {
		return uuid.Nil, err
	}
	return uids[0], nil
}

func (r *repo) ResolveBatch(ctx context.Context, taskID string, texts []string) ([]uuid.UUID, error) {
	existing, err := r.mapping(ctx, taskID)
	if err != nil {
		return nil, err
	}

	uids, minted := assign(existing, texts)
	if len(minted) == 0 {
		return uids, nil
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		for _, m := range minted {
			if _, err := tx.ExecContext(
				ctx,
				"INSERT INTO task_examples(task_id, uid, text) VALUES ($1, $2, $3)",
				taskID, m.UID, m.Text,
			); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})

	if err != nil {
		// A duplicate key here means a concurrent writer or a persisted row
		// disagreeing with what we just read. Never overwrite; surface it.
		return nil, repository.MapError(err, ErrNotFound, ErrCorrupt)
	}

	r.logger.Info("examples registered", "task", taskID, "new", len(minted), "total", len(texts))
	return uids, nil
}

func (r *repo) Lookup(ctx context.Context, taskID string, uid uuid.UUID) (string, error) {
	var text string
	err := r.db.QueryRowContext(
		ctx,
		"SELECT text FROM task_examples WHERE task_id = $1 AND uid = $2",
		taskID, uid,
	).Scan(&text)

	if err != nil {
		return "", repository.MapError(err, ErrNotFound, ErrCorrupt)
	}
	return text, nil
}

// mapping loads the full text-to-uid table for a task. It also verifies both
// injectivity directions; a violation is persisted-state corruption and is
// fatal for the task.
func (r *repo) mapping(ctx context.Context, taskID string) (map[string]uuid.UUID, error) {
	rows, err := r.db.QueryContext(
		ctx,
		"SELECT uid, text FROM task_examples WHERE task_id = $1",
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("query task examples: %w", err)
	}
	defer rows.Close()

	byText := make(map[string]uuid.UUID)
	byUID := make(map[uuid.UUID]bool)

	for rows.Next() {
		var uid uuid.UUID
		var text string
		if err := rows.Scan(&uid, &text); err != nil {
			return nil, fmt.Errorf("scan task example: %w", err)
		}
		if err := register(byText, byUID, taskID, uid, text); err != nil {
			return nil, err
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task examples: %w", err)
	}
	return byText, nil
}

// register records one persisted row, verifying both injectivity directions.
// A violation means the stored mapping is corrupt and is fatal for the task.
func register(byText map[string]uuid.UUID, byUID map[uuid.UUID]bool, taskID string, uid uuid.UUID, text string) error {
	if _, ok := byText[text]; ok {
		return fmt.Errorf("%w: text mapped twice for task %s", ErrCorrupt, taskID)
	}
	if byUID[uid] {
		return fmt.Errorf("%w: uid %s mapped twice for task %s", ErrCorrupt, uid, taskID)
	}
	byText[text] = uid
	byUID[uid] = true
	return nil
}

type mintedExample struct {
	UID  uuid.UUID
	Text string
}

// assign resolves texts against the existing mapping in order, minting one
// uid per distinct unseen text. Repeated texts within the call share a uid.
func assign(existing map[string]uuid.UUID, texts []string) ([]uuid.UUID, []mintedExample) {
	uids := make([]uuid.UUID, len(texts))
	var minted []mintedExample

	for i, text := range texts {
		uid, ok := existing[text]
		if !ok {
			uid = uuid.New()
			existing[text] = uid
			minted = append(minted, mintedExample{UID: uid, Text: text})
		}
		uids[i] = uid
	}
	return uids, minted
}
