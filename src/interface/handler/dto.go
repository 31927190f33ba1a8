package handler

import (
	"time"

	"ideas-jar/src/domain"
)

// CreateIdeaRequestDTO represents HTTP request for creating an idea
type CreateIdeaRequestDTO struct {
	Content  string `json:"content" validate:"required,not_blank"`
	IsVoice  bool   `json:"is_voice"`
	Priority string `json:"priority" validate:"omitempty,priority"`
}

// UpdateIdeaRequestDTO represents HTTP request for updating an idea.
// Omitted is_voice and priority fall back to false and medium.
type UpdateIdeaRequestDTO struct {
	Content  string `json:"content" validate:"required,not_blank"`
	IsVoice  bool   `json:"is_voice"`
	Priority string `json:"priority" validate:"omitempty,priority"`
}

// IdeaListQueryDTO represents HTTP query parameters for listing ideas
type IdeaListQueryDTO struct {
	Skip     *int   `form:"skip" validate:"omitempty,min=0"`
	Limit    *int   `form:"limit" validate:"omitempty,min=0"`
	Priority string `form:"priority" validate:"omitempty,priority"`
}

// IdeaResponseDTO represents HTTP response for an idea
type IdeaResponseDTO struct {
	ID           int       `json:"id"`
	Content      string    `json:"content"`
	IsVoice      bool      `json:"is_voice"`
	Priority     string    `json:"priority"`
	ImprovedText *string   `json:"improved_text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StatsResponseDTO represents HTTP response for idea statistics
type StatsResponseDTO struct {
	TotalIdeas        int            `json:"total_ideas"`
	VoiceIdeas        int            `json:"voice_ideas"`
	TextIdeas         int            `json:"text_ideas"`
	VoicePercentage   float64        `json:"voice_percentage"`
	PriorityBreakdown map[string]int `json:"priority_breakdown"`
}

// MessageResponseDTO represents a plain confirmation message
type MessageResponseDTO struct {
	Message string `json:"message"`
}

// HealthResponseDTO represents HTTP response for the health check
type HealthResponseDTO struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	Error     string    `json:"error,omitempty"`
}

// ErrorResponseDTO represents HTTP error response
type ErrorResponseDTO struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Error categories carried in ErrorResponseDTO.Code
const (
	CodeValidation = "validation_error"
	CodeNotFound   = "not_found"
	CodeStore      = "store_error"
)

func toIdeaResponseDTO(idea *domain.Idea) IdeaResponseDTO {
	return IdeaResponseDTO{
		ID:           idea.ID,
		Content:      idea.Content,
		IsVoice:      idea.IsVoice,
		Priority:     idea.Priority.String(),
		ImprovedText: idea.ImprovedText,
		CreatedAt:    idea.CreatedAt,
		UpdatedAt:    idea.UpdatedAt,
	}
}

func toIdeaResponseDTOs(ideas []domain.Idea) []IdeaResponseDTO {
	result := make([]IdeaResponseDTO, len(ideas))
	for i := range ideas {
		result[i] = toIdeaResponseDTO(&ideas[i])
	}
	return result
}

func toStatsResponseDTO(stats *domain.IdeaStats) StatsResponseDTO {
	breakdown := make(map[string]int, len(domain.Priorities))
	for _, p := range domain.Priorities {
		breakdown[p.String()] = stats.PriorityBreakdown[p]
	}

	return StatsResponseDTO{
		TotalIdeas:        stats.TotalIdeas,
		VoiceIdeas:        stats.VoiceIdeas,
		TextIdeas:         stats.TextIdeas,
		VoicePercentage:   stats.VoicePercentage,
		PriorityBreakdown: breakdown,
	}
}
