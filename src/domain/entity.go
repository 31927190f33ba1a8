package domain

import (
	"fmt"
	"strings"
	"time"
)

// Idea represents a captured idea
type Idea struct {
	ID           int       `json:"id"`
	Content      string    `json:"content"`
	IsVoice      bool      `json:"is_voice"`
	Priority     Priority  `json:"priority"`
	ImprovedText *string   `json:"improved_text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Priority represents idea priority levels
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every priority in display order
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// IsValid validates if the priority is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// String returns string representation of Priority
func (p Priority) String() string {
	return string(p)
}

// ParsePriority converts raw input into a Priority.
// Empty input yields PriorityMedium.
func ParsePriority(raw string) (Priority, error) {
	if raw == "" {
		return PriorityMedium, nil
	}
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
	return p, nil
}

// IdeaFilter represents filter criteria for idea list queries
type IdeaFilter struct {
	Skip     int
	Limit    int
	Priority Priority
}

// IdeaStats holds aggregate counts over all ideas
type IdeaStats struct {
	TotalIdeas        int              `json:"total_ideas"`
	VoiceIdeas        int              `json:"voice_ideas"`
	TextIdeas         int              `json:"text_ideas"`
	VoicePercentage   float64          `json:"voice_percentage"`
	PriorityBreakdown map[Priority]int `json:"priority_breakdown"`
}
