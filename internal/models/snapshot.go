package models

import (
	"strings"
	"time"
)

// Snapshot is the rendered page state read at assertion time. It is never cached:
// every assertion takes a fresh one.
type Snapshot struct {
	URL      string
	Text     string
	Children int
	TakenAt  time.Time
}

func (s Snapshot) Contains(substr string) bool {
	return strings.Contains(s.Text, substr)
}

// PatternCategory groups forbidden patterns by the layer that produced them.
type PatternCategory string

const (
	PatternCategoryHTTP     PatternCategory = "http"
	PatternCategoryPlugin   PatternCategory = "plugin"
	PatternCategoryTemplate PatternCategory = "template"
)

// ForbiddenPattern is a literal substring whose presence in rendered text is a defect.
type ForbiddenPattern struct {
	Text     string
	Category PatternCategory
}
