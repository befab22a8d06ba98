package types

import (
	"fmt"
	"strings"
)

// MaxTopicTitleLen caps topic titles after trimming.
const MaxTopicTitleLen = 150

// Topic is the subject of one debate. Ephemeral, never persisted.
type Topic struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ErrInvalidTopic is returned for empty or oversized topic titles.
var ErrInvalidTopic = fmt.Errorf("invalid topic")

// NewTopic trims and validates a topic title plus optional description.
func NewTopic(title, description string) (Topic, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Topic{}, fmt.Errorf("%w: empty title", ErrInvalidTopic)
	}
	if len([]rune(title)) > MaxTopicTitleLen {
		return Topic{}, fmt.Errorf("%w: title longer than %d chars", ErrInvalidTopic, MaxTopicTitleLen)
	}
	return Topic{Title: title, Description: strings.TrimSpace(description)}, nil
}
