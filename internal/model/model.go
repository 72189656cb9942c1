// Package model defines the domain types used across the application.
package model

import "time"

// Subscription represents one chat's standing watch on a search query.
// Seen holds the identifiers of feed items already delivered (or at least
// attempted) for this subscription, in delivery order, without duplicates.
type Subscription struct {
	ID        int64
	ChatID    int64
	Query     string
	Seen      []string
	CreatedAt time.Time
}

// HasSeen reports whether the given feed item identifier was already
// recorded for this subscription.
func (s *Subscription) HasSeen(id string) bool {
	for _, v := range s.Seen {
		if v == id {
			return true
		}
	}
	return false
}

// Video is a single entry of the MediathekViewWeb feed. Videos are
// immutable and compared by ID only.
type Video struct {
	ID              string
	Title           string
	Author          string
	DurationSeconds int
	Summary         string
	MediaURL        string
	PageURL         string
	PublishedAt     time.Time
}

// FilterKind defines the type of filter rule.
type FilterKind string

// Supported filter kinds.
const (
	FilterInclude   FilterKind = "include"
	FilterExclude   FilterKind = "exclude"
	FilterIncludeRe FilterKind = "include_re"
	FilterExcludeRe FilterKind = "exclude_re"
)

// FilterScope defines which part of a video a filter matches against.
type FilterScope string

// Supported filter scopes.
const (
	ScopeTitle   FilterScope = "title"
	ScopeSummary FilterScope = "summary"
	ScopeAll     FilterScope = "all"
)

// Filter represents a single filtering rule attached to a subscription.
type Filter struct {
	ID             int64
	SubscriptionID int64
	Kind           FilterKind
	Scope          FilterScope
	Value          string
	CreatedAt      time.Time
}
