package query

import (
	"math"

	"salesledger/pkg/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is a normalized paging window. Page and PageSize are >= 1 and
// PageSize <= MaxPageSize once produced by Normalize.
type PageRequest struct {
	Page     int
	PageSize int
}

// Offset is the number of matching records skipped before the window.
func (r PageRequest) Offset() int {
	if r.Page <= 1 || r.PageSize <= 0 {
		return 0
	}
	if r.Page-1 > math.MaxInt/r.PageSize {
		return math.MaxInt
	}
	return (r.Page - 1) * r.PageSize
}

// Limit is the maximum number of records in the window.
func (r PageRequest) Limit() int {
	return r.PageSize
}

// PageResult is one window of matching records plus the unwindowed total.
type PageResult struct {
	Data       []*domain.Transaction `json:"data"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalPages int                   `json:"totalPages"`
}

// TotalPages is ceil(total / pageSize), 0 when there are no matches.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Window returns records[offset:offset+limit] clamped to the slice bounds.
func Window(records []*domain.Transaction, offset, limit int) []*domain.Transaction {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) || limit <= 0 {
		return []*domain.Transaction{}
	}
	end := len(records)
	if limit < end-offset {
		end = offset + limit
	}
	return records[offset:end]
}
