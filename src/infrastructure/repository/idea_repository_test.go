package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"
	"time"

	"ideas-jar/src/database"
	"ideas-jar/src/domain"
	"ideas-jar/src/infrastructure/improver"
	"ideas-jar/src/infrastructure/repository"
	"ideas-jar/src/usecase"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "content", "is_voice", "priority", "improved_text", "created_at", "updated_at"}

func newRepo(t *testing.T) (*repository.IdeaRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return repository.NewIdeaRepository(database.Wrap(sqlDB, logger), logger), mock
}

func TestIdeaRepository_Create(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("returns assigned id", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO ideas \(content,is_voice,priority,created_at,updated_at\) VALUES \(\$1,\$2,\$3,\$4,\$5\) RETURNING`).
			WithArgs("buy milk", true, "high", now, now).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(7, "buy milk", true, "high", nil, now, now))
		mock.ExpectCommit()

		idea, err := repo.Create(context.Background(), &domain.Idea{
			Content:   "buy milk",
			IsVoice:   true,
			Priority:  domain.PriorityHigh,
			CreatedAt: now,
			UpdatedAt: now,
		})

		require.NoError(t, err)
		assert.Equal(t, 7, idea.ID)
		assert.Equal(t, domain.PriorityHigh, idea.Priority)
		assert.Nil(t, idea.ImprovedText)
		assert.Equal(t, idea.CreatedAt, idea.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store error rolls back", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO ideas`).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		idea, err := repo.Create(context.Background(), &domain.Idea{Content: "x", Priority: domain.PriorityLow})

		require.Error(t, err)
		assert.Nil(t, idea)
		assert.Contains(t, err.Error(), "failed to create idea")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIdeaRepository_GetByID(t *testing.T) {
	now := time.Now().UTC()
	improved := "Improved version: hello"

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, content, is_voice, priority, improved_text, created_at, updated_at FROM ideas WHERE id = \$1`).
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(3, "hello", false, "medium", improved, now, now))
		mock.ExpectCommit()

		idea, err := repo.GetByID(context.Background(), 3)

		require.NoError(t, err)
		assert.Equal(t, "hello", idea.Content)
		require.NotNil(t, idea.ImprovedText)
		assert.Equal(t, improved, *idea.ImprovedText)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .* FROM ideas WHERE id = \$1`).
			WithArgs(999).
			WillReturnRows(sqlmock.NewRows(columns))
		mock.ExpectRollback()

		idea, err := repo.GetByID(context.Background(), 999)

		assert.Nil(t, idea)
		assert.ErrorIs(t, err, domain.ErrIdeaNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIdeaRepository_List(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name   string
		filter domain.IdeaFilter
		query  string
		args   []driver.Value
	}{
		{
			name:   "no filter",
			filter: domain.IdeaFilter{Skip: 0, Limit: 100},
			query:  `SELECT .* FROM ideas ORDER BY created_at DESC, id DESC LIMIT 100 OFFSET 0`,
		},
		{
			name:   "priority filter",
			filter: domain.IdeaFilter{Skip: 10, Limit: 5, Priority: domain.PriorityHigh},
			query:  `SELECT .* FROM ideas WHERE priority = \$1 ORDER BY created_at DESC, id DESC LIMIT 5 OFFSET 10`,
			args:   []driver.Value{"high"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepo(t)
			mock.ExpectBegin()
			q := mock.ExpectQuery(tt.query)
			if tt.args != nil {
				q = q.WithArgs(tt.args...)
			}
			q.WillReturnRows(sqlmock.NewRows(columns).
				AddRow(2, "second", false, "high", nil, now, now).
				AddRow(1, "first", true, "high", nil, now.Add(-time.Minute), now.Add(-time.Minute)))
			mock.ExpectCommit()

			ideas, err := repo.List(context.Background(), tt.filter)

			require.NoError(t, err)
			require.Len(t, ideas, 2)
			assert.Equal(t, 2, ideas[0].ID)
			assert.Equal(t, 1, ideas[1].ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestIdeaRepository_List_Empty(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM ideas`).WillReturnRows(sqlmock.NewRows(columns))
	mock.ExpectCommit()

	ideas, err := repo.List(context.Background(), domain.IdeaFilter{Skip: 500, Limit: 100})

	require.NoError(t, err)
	assert.NotNil(t, ideas)
	assert.Empty(t, ideas)
}

func TestIdeaRepository_Search(t *testing.T) {
	now := time.Now().UTC()

	repo, mock := newRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM ideas WHERE content ILIKE \$1 ORDER BY created_at DESC, id DESC`).
		WithArgs(`%100\%%`).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(4, "give 100% effort", false, "low", nil, now, now))
	mock.ExpectCommit()

	ideas, err := repo.Search(context.Background(), "100%")

	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, "give 100% effort", ideas[0].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdeaRepository_Search_StoreError(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM ideas WHERE content ILIKE`).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	ideas, err := repo.Search(context.Background(), "x")

	assert.Nil(t, ideas)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.False(t, domain.IsNotFound(err))
}

func TestIdeaRepository_Update(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(time.Hour)

	t.Run("updates all mutable fields", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE ideas SET content = \$1, is_voice = \$2, priority = \$3, updated_at = GREATEST\(\$4::timestamptz, created_at\) WHERE id = \$5 RETURNING`).
			WithArgs("new text", true, "low", now, 5).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(5, "new text", true, "low", nil, created, now))
		mock.ExpectCommit()

		idea, err := repo.Update(context.Background(), 5, &domain.Idea{
			Content:   "new text",
			IsVoice:   true,
			Priority:  domain.PriorityLow,
			UpdatedAt: now,
		})

		require.NoError(t, err)
		assert.Equal(t, 5, idea.ID)
		assert.Equal(t, created, idea.CreatedAt)
		assert.Equal(t, now, idea.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE ideas`).WillReturnRows(sqlmock.NewRows(columns))
		mock.ExpectRollback()

		idea, err := repo.Update(context.Background(), 404, &domain.Idea{Content: "x", Priority: domain.PriorityMedium})

		assert.Nil(t, idea)
		assert.ErrorIs(t, err, domain.ErrIdeaNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIdeaRepository_Improve(t *testing.T) {
	const (
		selectForUpdate = `SELECT content FROM ideas WHERE id = \$1 FOR UPDATE`
		updateImproved  = `UPDATE ideas SET improved_text = \$1, updated_at = GREATEST\(\$2::timestamptz, created_at\) WHERE id = \$3 RETURNING`
	)
	now := time.Now().UTC()
	text := "Improved version: hello"

	t.Run("reads and writes in one transaction", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(selectForUpdate).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"content"}).AddRow("hello"))
		mock.ExpectQuery(updateImproved).
			WithArgs(text, now, 1).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "hello", false, "medium", text, now, now))
		mock.ExpectCommit()

		var seen string
		idea, err := repo.Improve(context.Background(), 1, func(content string) (string, error) {
			seen = content
			return "Improved version: " + content, nil
		}, now)

		require.NoError(t, err)
		assert.Equal(t, "hello", seen)
		require.NotNil(t, idea.ImprovedText)
		assert.Equal(t, text, *idea.ImprovedText)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("usecase improve uses a single transaction", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(selectForUpdate).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"content"}).AddRow("hello"))
		mock.ExpectQuery(updateImproved).
			WithArgs(text, sqlmock.AnyArg(), 1).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "hello", false, "medium", text, now, now))
		mock.ExpectCommit()

		uc := usecase.NewIdeaUsecase(repo, improver.NewPlaceholderImprover(""))
		idea, err := uc.ImproveIdea(context.Background(), 1)

		require.NoError(t, err)
		require.NotNil(t, idea.ImprovedText)
		assert.Equal(t, text, *idea.ImprovedText)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing idea rolls back without improving", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(selectForUpdate).
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows([]string{"content"}))
		mock.ExpectRollback()

		called := false
		_, err := repo.Improve(context.Background(), 99, func(content string) (string, error) {
			called = true
			return content, nil
		}, now)

		assert.ErrorIs(t, err, domain.ErrIdeaNotFound)
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("improver failure rolls back", func(t *testing.T) {
		repo, mock := newRepo(t)
		upstream := errors.New("upstream unavailable")
		mock.ExpectBegin()
		mock.ExpectQuery(selectForUpdate).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"content"}).AddRow("hello"))
		mock.ExpectRollback()

		_, err := repo.Improve(context.Background(), 1, func(string) (string, error) {
			return "", upstream
		}, now)

		assert.ErrorIs(t, err, upstream)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIdeaRepository_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		execErr  error
		check    func(t *testing.T, err error)
	}{
		{
			name:     "deleted",
			affected: 1,
			check: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:     "not found",
			affected: 0,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrIdeaNotFound)
			},
		},
		{
			name:    "store error",
			execErr: errors.New("deadlock detected"),
			check: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to delete idea")
				assert.False(t, domain.IsNotFound(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepo(t)
			mock.ExpectBegin()
			exec := mock.ExpectExec(`DELETE FROM ideas WHERE id = \$1`).WithArgs(9)
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}
			if tt.affected == 1 {
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			tt.check(t, repo.Delete(context.Background(), 9))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestIdeaRepository_Stats(t *testing.T) {
	statsColumns := []string{"total", "voice", "text", "high", "medium", "low"}

	t.Run("counts", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COUNT\(\*\), COUNT\(\*\) FILTER \(WHERE is_voice\)`).
			WillReturnRows(sqlmock.NewRows(statsColumns).AddRow(3, 1, 2, 1, 2, 0))
		mock.ExpectCommit()

		stats, err := repo.Stats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalIdeas)
		assert.Equal(t, 1, stats.VoiceIdeas)
		assert.Equal(t, 2, stats.TextIdeas)
		assert.Equal(t, 33.33, stats.VoicePercentage)
		assert.Equal(t, 1, stats.PriorityBreakdown[domain.PriorityHigh])
		assert.Equal(t, 2, stats.PriorityBreakdown[domain.PriorityMedium])
		assert.Equal(t, 0, stats.PriorityBreakdown[domain.PriorityLow])
	})

	t.Run("empty store", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COUNT`).
			WillReturnRows(sqlmock.NewRows(statsColumns).AddRow(0, 0, 0, 0, 0, 0))
		mock.ExpectCommit()

		stats, err := repo.Stats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, stats.TotalIdeas)
		assert.Equal(t, 0.0, stats.VoicePercentage)
		assert.Len(t, stats.PriorityBreakdown, 3)
	})
}
