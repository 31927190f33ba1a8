package domain

import (
	"context"
	"time"
)

// IdeaRepository defines the interface for idea data operations
type IdeaRepository interface {
	Create(ctx context.Context, idea *Idea) (*Idea, error)
	GetByID(ctx context.Context, id int) (*Idea, error)
	List(ctx context.Context, filter IdeaFilter) ([]Idea, error)
	Search(ctx context.Context, query string) ([]Idea, error)
	Update(ctx context.Context, id int, idea *Idea) (*Idea, error)
	// Improve reads the idea's content, derives improved_text from it with fn and
	// stores the result, all within one transaction holding the row lock.
	Improve(ctx context.Context, id int, fn ImproveFunc, updatedAt time.Time) (*Idea, error)
	Delete(ctx context.Context, id int) error
	Stats(ctx context.Context) (*IdeaStats, error)
}

// ImproveFunc derives improved text from an idea's current content
type ImproveFunc func(content string) (string, error)

// Improver derives an improved version of an idea's content.
// Implementations may call out to an external enrichment service.
type Improver interface {
	Improve(ctx context.Context, content string) (string, error)
}
