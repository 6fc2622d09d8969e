package document

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a document.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Statuses lists every valid status in declaration order.
var Statuses = []Status{StatusDraft, StatusPublished, StatusArchived}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// CanTransition reports whether a document in state from may move to state to.
// Writing the current status again is always allowed (soft delete and restore
// are idempotent). Archived documents only leave the archive as drafts.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	switch to {
	case StatusArchived:
		return true
	case StatusDraft:
		return from == StatusPublished || from == StatusArchived
	case StatusPublished:
		return from == StatusDraft
	}
	return false
}

// BlockedSources returns the statuses from which a move to `to` is not allowed.
// Stores use it to guard the status change inside a single conditional write.
func BlockedSources(to Status) []Status {
	var out []Status
	for _, from := range Statuses {
		if !CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}

// Document is the persisted text document. Values are returned by copy; the
// store never hands out references to its own state.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Status    Status    `json:"status"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateInput carries the caller supplied fields of a new document.
// An empty Status means draft.
type CreateInput struct {
	Title    string
	Content  string
	Status   Status
	AuthorID string
}

// UpdateInput is a partial update; nil fields are left untouched.
// ID and AuthorID are immutable and therefore absent.
type UpdateInput struct {
	Title   *string
	Content *string
	Status  *Status
}

// Filter narrows List results. A nil Status excludes archived documents.
type Filter struct {
	Status *Status
	Query  string
}

// HasQuery reports whether the filter activates text search.
func (f Filter) HasQuery() bool {
	return strings.TrimSpace(f.Query) != ""
}

// Terms returns the search terms of the query.
func (f Filter) Terms() []string {
	return Terms(f.Query)
}

// PageRequest selects one page of a listing.
type PageRequest struct {
	Page  int
	Limit int
}
