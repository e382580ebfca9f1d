package notes

import (
	"errors"
	"time"
)

const (
	MaxTextLength = 500
	// how many saved notes, merged with the tips, the dashboard shows
	DashboardLimit = 10
)

var (
	ErrNoteNotFound = errors.New("note not found")
	ErrEmptyNote    = errors.New("note text empty")
)

type Note struct {
	ID        int       `json:"id"`
	UserID    int       `json:"-"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultTips are always shown after the user's own notes.
var DefaultTips = []string{
	"Consistency > intensity.",
	"Today: clean technique.",
	"Keep it simple and repeatable.",
	"One good set beats three rushed ones.",
	"When in doubt, lower the weight and control it.",
}

// MergeWithTips appends the default tips to the saved notes, dropping
// duplicates and keeping at most limit texts.
func MergeWithTips(saved []Note, limit int) []string {
	seen := make(map[string]bool)
	merged := make([]string, 0, limit)
	add := func(text string) {
		if text == "" || seen[text] || len(merged) >= limit {
			return
		}
		seen[text] = true
		merged = append(merged, text)
	}
	for _, n := range saved {
		add(n.Text)
	}
	for _, tip := range DefaultTips {
		add(tip)
	}
	return merged
}
