package models

import "strconv"

// IssueBundle is an issue together with its flattened message text, ready to
// be classified and reported.
type IssueBundle struct {
	IssueID     string   `json:"issue_id" yaml:"issue_id"`
	IssueNumber *int     `json:"issue_number,omitempty" yaml:"issue_number,omitempty"`
	Title       string   `json:"title" yaml:"title"`
	Link        *string  `json:"link,omitempty" yaml:"link,omitempty"`
	State       *string  `json:"state,omitempty" yaml:"state,omitempty"`
	CreatedAt   *string  `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Tags        []string `json:"tags" yaml:"tags"`
	MessageText string   `json:"message_text" yaml:"message_text"`
}

// Ref is the human-facing reference: "#<number>" when known, the id otherwise.
func (b IssueBundle) Ref() string {
	if b.IssueNumber != nil && *b.IssueNumber != 0 {
		return "#" + strconv.Itoa(*b.IssueNumber)
	}
	return b.IssueID
}
