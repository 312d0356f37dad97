// Package common holds the small cross-cutting value types shared by every
// layer of the ResearchTools-Intelligence platform.
package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ID is a string alias for UUID v4.
type ID string

// PublicationID is the opaque identifier of a source publication (PMID, DOI,
// or an internal accession).  The pipeline never interprets it.
type PublicationID string

// Metadata is an open-ended key-value bag.
type Metadata map[string]interface{}

// Pagination defines parameters for paginated requests.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total,omitempty"`
}

// Validate checks pagination bounds.
func (p Pagination) Validate() error {
	if p.Page < 0 {
		return fmt.Errorf("pagination: page must be >= 0, got %d", p.Page)
	}
	if p.PageSize < 0 || p.PageSize > 1000 {
		return fmt.Errorf("pagination: page_size must be in [0,1000], got %d", p.PageSize)
	}
	return nil
}

// Offset converts 1-based page/page_size into a row offset.
func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// DateRange is a half-open [From, Until) time window used by history queries.
type DateRange struct {
	From  *time.Time `json:"from,omitempty"`
	Until *time.Time `json:"until,omitempty"`
}

// Contains reports whether t falls inside the range; nil bounds are open.
func (dr DateRange) Contains(t time.Time) bool {
	if dr.From != nil && t.Before(*dr.From) {
		return false
	}
	if dr.Until != nil && !t.Before(*dr.Until) {
		return false
	}
	return true
}

// NewID returns a fresh UUID v4 ID.
func NewID() ID {
	return ID(uuid.NewString())
}

// Validate reports whether the ID parses as a UUID.
func (id ID) Validate() error {
	if _, err := uuid.Parse(string(id)); err != nil {
		return fmt.Errorf("invalid id %q: %w", string(id), err)
	}
	return nil
}

func (id ID) String() string { return string(id) }
