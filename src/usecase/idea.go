package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ideas-jar/src/domain"
)

const (
	DefaultLimit = 100
)

// CreateIdeaRequest represents input for creating an idea
type CreateIdeaRequest struct {
	Content  string
	IsVoice  bool
	Priority string
}

// UpdateIdeaRequest represents input for replacing an idea's mutable fields
type UpdateIdeaRequest struct {
	Content  string
	IsVoice  bool
	Priority string
}

// ListIdeasRequest represents list parameters; nil Skip/Limit take defaults
type ListIdeasRequest struct {
	Skip     *int
	Limit    *int
	Priority string
}

// IdeaUsecase defines the interface for idea business logic
type IdeaUsecase interface {
	ListIdeas(ctx context.Context, req ListIdeasRequest) ([]domain.Idea, error)
	GetIdea(ctx context.Context, id int) (*domain.Idea, error)
	SearchIdeas(ctx context.Context, query string) ([]domain.Idea, error)
	CreateIdea(ctx context.Context, req CreateIdeaRequest) (*domain.Idea, error)
	UpdateIdea(ctx context.Context, id int, req UpdateIdeaRequest) (*domain.Idea, error)
	ImproveIdea(ctx context.Context, id int) (*domain.Idea, error)
	DeleteIdea(ctx context.Context, id int) error
	Stats(ctx context.Context) (*domain.IdeaStats, error)
}

type ideaUsecase struct {
	ideaRepo domain.IdeaRepository
	improver domain.Improver
	now      func() time.Time
}

// NewIdeaUsecase creates a new idea usecase
func NewIdeaUsecase(ideaRepo domain.IdeaRepository, improver domain.Improver) IdeaUsecase {
	return &ideaUsecase{
		ideaRepo: ideaRepo,
		improver: improver,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListIdeas retrieves ideas newest first
func (u *ideaUsecase) ListIdeas(ctx context.Context, req ListIdeasRequest) ([]domain.Idea, error) {
	filter, err := u.toFilter(req)
	if err != nil {
		return nil, err
	}
	return u.ideaRepo.List(ctx, filter)
}

// GetIdea retrieves an idea by ID
func (u *ideaUsecase) GetIdea(ctx context.Context, id int) (*domain.Idea, error) {
	return u.ideaRepo.GetByID(ctx, id)
}

// SearchIdeas finds ideas whose content contains query; an empty query matches all
func (u *ideaUsecase) SearchIdeas(ctx context.Context, query string) ([]domain.Idea, error) {
	return u.ideaRepo.Search(ctx, query)
}

// CreateIdea validates and stores a new idea
func (u *ideaUsecase) CreateIdea(ctx context.Context, req CreateIdeaRequest) (*domain.Idea, error) {
	content, priority, err := validateFields(req.Content, req.Priority)
	if err != nil {
		return nil, err
	}

	now := u.now()
	idea := &domain.Idea{
		Content:   content,
		IsVoice:   req.IsVoice,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return u.ideaRepo.Create(ctx, idea)
}

// UpdateIdea replaces content, voice flag and priority
func (u *ideaUsecase) UpdateIdea(ctx context.Context, id int, req UpdateIdeaRequest) (*domain.Idea, error) {
	content, priority, err := validateFields(req.Content, req.Priority)
	if err != nil {
		return nil, err
	}

	idea := &domain.Idea{
		ID:        id,
		Content:   content,
		IsVoice:   req.IsVoice,
		Priority:  priority,
		UpdatedAt: u.now(),
	}

	return u.ideaRepo.Update(ctx, id, idea)
}

// ImproveIdea derives improved_text from the current content.
// Repeated calls overwrite the previous improvement.
func (u *ideaUsecase) ImproveIdea(ctx context.Context, id int) (*domain.Idea, error) {
	return u.ideaRepo.Improve(ctx, id, func(content string) (string, error) {
		improved, err := u.improver.Improve(ctx, content)
		if err != nil {
			return "", fmt.Errorf("failed to improve idea: %w", err)
		}
		return improved, nil
	}, u.now())
}

// DeleteIdea permanently removes an idea
func (u *ideaUsecase) DeleteIdea(ctx context.Context, id int) error {
	return u.ideaRepo.Delete(ctx, id)
}

// Stats returns aggregate counts
func (u *ideaUsecase) Stats(ctx context.Context) (*domain.IdeaStats, error) {
	return u.ideaRepo.Stats(ctx)
}

// validateFields trims content and resolves the priority
func validateFields(rawContent, rawPriority string) (string, domain.Priority, error) {
	content := strings.TrimSpace(rawContent)
	if content == "" {
		return "", "", domain.ErrEmptyContent
	}

	priority, err := domain.ParsePriority(rawPriority)
	if err != nil {
		return "", "", err
	}
	return content, priority, nil
}

// toFilter applies defaults and rejects negative pagination
func (u *ideaUsecase) toFilter(req ListIdeasRequest) (domain.IdeaFilter, error) {
	filter := domain.IdeaFilter{Skip: 0, Limit: DefaultLimit}

	if req.Skip != nil {
		filter.Skip = *req.Skip
	}
	if req.Limit != nil {
		filter.Limit = *req.Limit
	}
	if filter.Skip < 0 || filter.Limit < 0 {
		return domain.IdeaFilter{}, domain.ErrInvalidPagination
	}

	if req.Priority != "" {
		priority, err := domain.ParsePriority(req.Priority)
		if err != nil {
			return domain.IdeaFilter{}, err
		}
		filter.Priority = priority
	}

	return filter, nil
}
