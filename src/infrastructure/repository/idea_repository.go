package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ideas-jar/src/database"
	"ideas-jar/src/domain"
	"ideas-jar/src/security"

	sq "github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
)

const ideasTable = "ideas"

var ideaColumns = []string{
	"id", "content", "is_voice", "priority", "improved_text", "created_at", "updated_at",
}

// IdeaRepository implements domain.IdeaRepository on PostgreSQL.
// Every method runs in its own transaction.
type IdeaRepository struct {
	db     *database.DB
	logger *logrus.Logger
	psql   sq.StatementBuilderType
}

// NewIdeaRepository creates a new idea repository
func NewIdeaRepository(db *database.DB, logger *logrus.Logger) *IdeaRepository {
	return &IdeaRepository{
		db:     db,
		logger: logger,
		psql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var _ domain.IdeaRepository = (*IdeaRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdea(row rowScanner) (*domain.Idea, error) {
	var (
		idea     domain.Idea
		priority string
		improved sql.NullString
	)

	if err := row.Scan(
		&idea.ID, &idea.Content, &idea.IsVoice, &priority, &improved,
		&idea.CreatedAt, &idea.UpdatedAt,
	); err != nil {
		return nil, err
	}

	idea.Priority = domain.Priority(priority)
	if improved.Valid {
		idea.ImprovedText = &improved.String
	}
	return &idea, nil
}

func returning() string {
	return "RETURNING " + strings.Join(ideaColumns, ", ")
}

// Create inserts a new idea and returns it with its assigned id
func (r *IdeaRepository) Create(ctx context.Context, idea *domain.Idea) (*domain.Idea, error) {
	query, args, err := r.psql.Insert(ideasTable).
		Columns("content", "is_voice", "priority", "created_at", "updated_at").
		Values(idea.Content, idea.IsVoice, idea.Priority.String(), idea.CreatedAt, idea.UpdatedAt).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert: %w", err)
	}

	var created *domain.Idea
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var scanErr error
		created, scanErr = scanIdea(tx.QueryRowContext(ctx, query, args...))
		return scanErr
	})
	if err != nil {
		r.logger.WithError(err).Error("アイデアの作成に失敗")
		return nil, fmt.Errorf("failed to create idea: %w", err)
	}

	r.logger.WithField("idea_id", created.ID).Info("アイデアを作成しました")
	return created, nil
}

// GetByID retrieves an idea by ID
func (r *IdeaRepository) GetByID(ctx context.Context, id int) (*domain.Idea, error) {
	query, args, err := r.psql.Select(ideaColumns...).
		From(ideasTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var idea *domain.Idea
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var scanErr error
		idea, scanErr = scanIdea(tx.QueryRowContext(ctx, query, args...))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrIdeaNotFound
		}
		r.logger.WithError(err).WithField("idea_id", id).Error("Failed to get idea by ID")
		return nil, fmt.Errorf("failed to get idea: %w", err)
	}

	return idea, nil
}

// List retrieves ideas newest first with optional priority filtering
func (r *IdeaRepository) List(ctx context.Context, filter domain.IdeaFilter) ([]domain.Idea, error) {
	builder := r.psql.Select(ideaColumns...).From(ideasTable)

	if filter.Priority != "" {
		builder = builder.Where(sq.Eq{"priority": filter.Priority.String()})
	}

	builder = builder.
		OrderBy("created_at DESC", "id DESC").
		Offset(uint64(filter.Skip)).
		Limit(uint64(filter.Limit))

	ideas, err := r.queryIdeas(ctx, builder)
	if err != nil {
		r.logger.WithError(err).Error("Failed to list ideas")
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	return ideas, nil
}

// Search returns ideas whose content contains query, case-insensitively
func (r *IdeaRepository) Search(ctx context.Context, query string) ([]domain.Idea, error) {
	builder := r.psql.Select(ideaColumns...).
		From(ideasTable).
		Where("content ILIKE ?", security.ContainsPattern(query)).
		OrderBy("created_at DESC", "id DESC")

	ideas, err := r.queryIdeas(ctx, builder)
	if err != nil {
		r.logger.WithError(err).Error("Failed to search ideas")
		return nil, fmt.Errorf("failed to search ideas: %w", err)
	}
	return ideas, nil
}

func (r *IdeaRepository) queryIdeas(ctx context.Context, builder sq.SelectBuilder) ([]domain.Idea, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	ideas := []domain.Idea{}
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			idea, err := scanIdea(rows)
			if err != nil {
				return fmt.Errorf("failed to scan idea: %w", err)
			}
			ideas = append(ideas, *idea)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return ideas, nil
}

// Update replaces content, is_voice and priority in one statement
func (r *IdeaRepository) Update(ctx context.Context, id int, idea *domain.Idea) (*domain.Idea, error) {
	builder := r.psql.Update(ideasTable).
		Set("content", idea.Content).
		Set("is_voice", idea.IsVoice).
		Set("priority", idea.Priority.String()).
		Set("updated_at", touch(idea.UpdatedAt)).
		Where(sq.Eq{"id": id}).
		Suffix(returning())

	updated, err := r.updateReturning(ctx, builder)
	if err != nil {
		if errors.Is(err, domain.ErrIdeaNotFound) {
			return nil, err
		}
		r.logger.WithError(err).WithField("idea_id", id).Error("Failed to update idea")
		return nil, fmt.Errorf("failed to update idea: %w", err)
	}

	r.logger.WithField("idea_id", id).Info("アイデアを更新しました")
	return updated, nil
}

// Improve locks the row, derives the improved text from its current content
// and stores it in the same transaction
func (r *IdeaRepository) Improve(ctx context.Context, id int, fn domain.ImproveFunc, updatedAt time.Time) (*domain.Idea, error) {
	selectQuery, selectArgs, err := r.psql.Select("content").
		From(ideasTable).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var (
		idea       *domain.Idea
		improveErr error
	)
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var content string
		if err := tx.QueryRowContext(ctx, selectQuery, selectArgs...).Scan(&content); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrIdeaNotFound
			}
			return err
		}

		text, err := fn(content)
		if err != nil {
			improveErr = err
			return err
		}

		query, args, err := r.psql.Update(ideasTable).
			Set("improved_text", text).
			Set("updated_at", touch(updatedAt)).
			Where(sq.Eq{"id": id}).
			Suffix(returning()).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update: %w", err)
		}

		idea, err = scanIdea(tx.QueryRowContext(ctx, query, args...))
		return err
	})
	if err != nil {
		if improveErr != nil || errors.Is(err, domain.ErrIdeaNotFound) {
			return nil, err
		}
		r.logger.WithError(err).WithField("idea_id", id).Error("Failed to improve idea")
		return nil, fmt.Errorf("failed to improve idea: %w", err)
	}

	r.logger.WithField("idea_id", id).Info("アイデアを改善しました")
	return idea, nil
}

// touch never moves updated_at behind created_at
func touch(now time.Time) sq.Sqlizer {
	return sq.Expr("GREATEST(?::timestamptz, created_at)", now)
}

func (r *IdeaRepository) updateReturning(ctx context.Context, builder sq.UpdateBuilder) (*domain.Idea, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update: %w", err)
	}

	var idea *domain.Idea
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var scanErr error
		idea, scanErr = scanIdea(tx.QueryRowContext(ctx, query, args...))
		if errors.Is(scanErr, sql.ErrNoRows) {
			return domain.ErrIdeaNotFound
		}
		return scanErr
	})
	if err != nil {
		return nil, err
	}
	return idea, nil
}

// Delete permanently removes an idea
func (r *IdeaRepository) Delete(ctx context.Context, id int) error {
	query, args, err := r.psql.Delete(ideasTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rowsAffected == 0 {
			return domain.ErrIdeaNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrIdeaNotFound) {
			return err
		}
		r.logger.WithError(err).WithField("idea_id", id).Error("Failed to delete idea")
		return fmt.Errorf("failed to delete idea: %w", err)
	}

	r.logger.WithField("idea_id", id).Info("アイデアを削除しました")
	return nil
}

// Stats aggregates counts over all ideas in a single query
func (r *IdeaRepository) Stats(ctx context.Context) (*domain.IdeaStats, error) {
	query, args, err := r.psql.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE is_voice)",
		"COUNT(*) FILTER (WHERE NOT is_voice)",
		"COUNT(*) FILTER (WHERE priority = 'high')",
		"COUNT(*) FILTER (WHERE priority = 'medium')",
		"COUNT(*) FILTER (WHERE priority = 'low')",
	).From(ideasTable).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build stats query: %w", err)
	}

	var total, voice, text, high, medium, low int
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, query, args...).Scan(&total, &voice, &text, &high, &medium, &low)
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to get idea stats")
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return domain.NewIdeaStats(total, voice, text, map[domain.Priority]int{
		domain.PriorityHigh:   high,
		domain.PriorityMedium: medium,
		domain.PriorityLow:    low,
	}), nil
}
