// Package vocabulary models the controlled vocabularies that back each
// segment kind, and the append-only unknown-extraction log that tracks
// values the Filter Extractor could not canonicalize.
//
// The vocabulary is populated at seed time and is read-only on the query
// path (spec §3 "Ownership"); this package only exposes read operations plus
// the upsert needed to record misses.
package vocabulary

import (
	"context"
	"time"

	"github.com/driftwell/discoveryengine/internal/segment"
)

// Entry is a single canonical vocabulary value.
type Entry struct {
	Name     string
	Synonyms []string
	// OrderIndex is populated only for segment.FundingStage and is strictly
	// increasing across that segment's entries.
	OrderIndex int
}

// Store is the read surface over the seeded vocabulary tables. It is
// satisfied by the relational collaborator; the query pipeline never writes
// through it except via RecordUnknown.
type Store interface {
	// List returns every canonical entry for a segment, sorted by Name (or,
	// for segment.FundingStage, by OrderIndex).
	List(ctx context.Context, seg segment.Name) ([]Entry, error)

	// ExactMatch reports whether raw matches a canonical entry for seg by
	// case-insensitive equality, returning the canonical spelling.
	ExactMatch(ctx context.Context, seg segment.Name, raw string) (string, bool, error)

	// RecordUnknown upserts an unknown-extraction log row by (rawValue,
	// segment): increments Count and refreshes LastSeen.
	RecordUnknown(ctx context.Context, seg segment.Name, rawValue string) error
}

// UnknownExtractionStatus is the lifecycle state of a logged vocabulary gap.
type UnknownExtractionStatus string

const (
	StatusPending  UnknownExtractionStatus = "pending"
	StatusApproved UnknownExtractionStatus = "approved"
	StatusMapped   UnknownExtractionStatus = "mapped"
	StatusIgnored  UnknownExtractionStatus = "ignored"
)

// UnknownExtraction is a row of the append/upsert log described in spec §3.
type UnknownExtraction struct {
	RawValue  string
	Segment   segment.Name
	Count     int
	FirstSeen time.Time
	LastSeen  time.Time
	Status    UnknownExtractionStatus
	MatchedTo string // empty until an operator maps it
}
