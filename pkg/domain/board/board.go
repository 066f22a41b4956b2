// Package board holds the normalized project-board model: cards, lists,
// members, and the immutable snapshot the analysis pipeline runs on.
package board

import (
	"fmt"
	"strings"
	"time"
)

// Detection literals for the weak string conventions the board relies on.
// They are deliberately isolated behind the predicate functions below so a
// future switch to label ids or status enums does not touch call sites.
const (
	DoneListName      = "Done"
	BlockerLabelColor = "red"
	BlockerKeyword    = "blocker"
)

// blockerReasonLimit caps how much comment text is echoed into a reason.
const blockerReasonLimit = 50

// IsDoneList reports whether a list name marks cards as complete.
// The match is a single case-sensitive literal; "done" or "Done!" do not count.
func IsDoneList(name string) bool {
	return name == DoneListName
}

// IsBlockerLabel reports whether a label marks its card as blocked.
func IsBlockerLabel(l Label) bool {
	return l.Color == BlockerLabelColor
}

// MentionsBlocker reports whether free text mentions a blocker.
func MentionsBlocker(text string) bool {
	return strings.Contains(strings.ToLower(text), BlockerKeyword)
}

// ParseTimestamp parses the ISO 8601 timestamps the board API emits.
// Accepts zoned ("2024-01-15T10:30:00.000Z"), naive, and date-only forms.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: not ISO 8601", s)
}

// Label is a colored tag attached to a card.
type Label struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

// Attachment is a file or link attached to a card.
type Attachment struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
	Date string `json:"date,omitempty" yaml:"date,omitempty"`
}

// Comment is a card comment extracted from the board's action stream.
type Comment struct {
	ID     string `json:"id" yaml:"id"`
	Text   string `json:"text" yaml:"text"`
	Date   string `json:"date" yaml:"date"`
	Author string `json:"author,omitempty" yaml:"author,omitempty"` // display name, empty when no creator record
}

// CardMember is a member assignment resolved to a display name.
type CardMember struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Member is a board member.
type Member struct {
	ID        string `json:"id" yaml:"id"`
	FullName  string `json:"fullName,omitempty" yaml:"fullName,omitempty"`
	Username  string `json:"username" yaml:"username"`
	AvatarURL string `json:"avatarUrl,omitempty" yaml:"avatarUrl,omitempty"`
}

// DisplayName returns the member's full name, falling back to the username.
func (m Member) DisplayName() string {
	if m.FullName != "" {
		return m.FullName
	}
	return m.Username
}

// List is a named stage cards move through.
type List struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Closed bool    `json:"closed" yaml:"closed"`
	Pos    float64 `json:"pos" yaml:"pos"`
}

// Card is a unit of work with its cross-references resolved.
// Due keeps the raw ISO string (empty when unset) because downstream entries
// echo it verbatim; consumers parse on use via ParseTimestamp.
type Card struct {
	ID               string       `json:"id" yaml:"id"`
	Name             string       `json:"name" yaml:"name"`
	Desc             string       `json:"desc,omitempty" yaml:"desc,omitempty"`
	URL              string       `json:"url,omitempty" yaml:"url,omitempty"`
	ListID           string       `json:"idList,omitempty" yaml:"idList,omitempty"`
	ListName         string       `json:"listName" yaml:"listName"`
	Due              string       `json:"due,omitempty" yaml:"due,omitempty"`
	DueComplete      bool         `json:"dueComplete" yaml:"dueComplete"`
	DateLastActivity string       `json:"dateLastActivity,omitempty" yaml:"dateLastActivity,omitempty"`
	Labels           []Label      `json:"labels" yaml:"labels"`
	MemberIDs        []string     `json:"idMembers,omitempty" yaml:"idMembers,omitempty"` // raw refs, resolvable or not
	Members          []CardMember `json:"members" yaml:"members"`
	Comments         []Comment    `json:"comments" yaml:"comments"`
	Attachments      []Attachment `json:"attachments" yaml:"attachments"`
	IsComplete       bool         `json:"isComplete" yaml:"isComplete"`
	IsBlocker        bool         `json:"isBlocker" yaml:"isBlocker"`
	BlockerReason    string       `json:"blockerReason,omitempty" yaml:"blockerReason,omitempty"`
}

// HasDue reports whether the card carries a due timestamp.
func (c Card) HasDue() bool {
	return c.Due != ""
}

// DueTime parses the card's due timestamp.
func (c Card) DueTime() (time.Time, error) {
	return ParseTimestamp(c.Due)
}

// IsOverdue reports whether the card's due date has passed without the due
// flag being checked off. Unparseable due dates never count as overdue.
func (c Card) IsOverdue() bool {
	if !c.HasDue() || c.DueComplete {
		return false
	}
	due, err := c.DueTime()
	if err != nil {
		return false
	}
	return due.Before(time.Now())
}
