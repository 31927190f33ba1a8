package improver

import (
	"context"

	"ideas-jar/src/domain"
)

// DefaultPrefix is prepended to the content by the placeholder improver
const DefaultPrefix = "Improved version: "

// PlaceholderImprover stands in for an external text enrichment service.
// The result is deterministic: prefix + content.
type PlaceholderImprover struct {
	prefix string
}

// NewPlaceholderImprover creates a placeholder improver; an empty prefix uses DefaultPrefix
func NewPlaceholderImprover(prefix string) *PlaceholderImprover {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &PlaceholderImprover{prefix: prefix}
}

var _ domain.Improver = (*PlaceholderImprover)(nil)

// Improve returns the prefixed content
func (p *PlaceholderImprover) Improve(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.prefix + content, nil
}
