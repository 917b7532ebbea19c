// Package memory provides an in-process record store for fixtures, tests and
// local demos. It evaluates predicates with query.Predicate.Match.
package memory

import (
	"context"
	"sort"
	"sync"

	"salesledger/internal/query"
	"salesledger/pkg/domain"
	"salesledger/pkg/errors"
)

type TransactionRepository struct {
	mu      sync.RWMutex
	records []*domain.Transaction
}

func NewTransactionRepository(records ...*domain.Transaction) *TransactionRepository {
	r := &TransactionRepository{}
	r.Load(records)
	return r
}

// Load replaces the snapshot. Records are copied so callers cannot mutate it.
func (r *TransactionRepository) Load(records []*domain.Transaction) {
	snapshot := make([]*domain.Transaction, 0, len(records))
	for i, rec := range records {
		cp := *rec
		if cp.ID == 0 {
			cp.ID = int64(i + 1)
		}
		snapshot = append(snapshot, &cp)
	}

	r.mu.Lock()
	r.records = snapshot
	r.mu.Unlock()
}

func (r *TransactionRepository) matching(pred query.Predicate) []*domain.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Transaction, 0, len(r.records))
	for _, rec := range r.records {
		if pred.Match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (r *TransactionRepository) Select(ctx context.Context, pred query.Predicate, order query.Order, offset, limit int) ([]*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to select transactions")
	}

	matches := r.matching(pred)
	sort.SliceStable(matches, func(i, j int) bool {
		return order.Less(matches[i], matches[j])
	})

	window := query.Window(matches, offset, limit)
	out := make([]*domain.Transaction, 0, len(window))
	for _, rec := range window {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (r *TransactionRepository) Count(ctx context.Context, pred query.Predicate) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.Wrap(err, "failed to count transactions")
	}
	return len(r.matching(pred)), nil
}

func (r *TransactionRepository) Sum(ctx context.Context, pred query.Predicate) (query.Totals, error) {
	if err := ctx.Err(); err != nil {
		return query.Totals{}, errors.Wrap(err, "failed to aggregate transactions")
	}

	var totals query.Totals
	for _, rec := range r.matching(pred) {
		totals.Add(rec)
	}
	return totals, nil
}

func (r *TransactionRepository) Distinct(ctx context.Context, field query.Field) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list distinct values")
	}

	var get func(*domain.Transaction) *string
	switch field {
	case query.FieldRegion:
		get = func(t *domain.Transaction) *string { return t.CustomerRegion }
	case query.FieldGender:
		get = func(t *domain.Transaction) *string { return t.Gender }
	case query.FieldCategory:
		get = func(t *domain.Transaction) *string { return t.ProductCategory }
	default:
		return nil, errors.Wrap(errors.ErrUnknownField, string(field))
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, rec := range r.records {
		v := get(rec)
		if v == nil || *v == "" {
			continue
		}
		if _, dup := seen[*v]; dup {
			continue
		}
		seen[*v] = struct{}{}
		out = append(out, *v)
	}
	sort.Strings(out)
	return out, nil
}

// Ping always succeeds; the snapshot lives in process.
func (r *TransactionRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// InsertBatch appends records to the snapshot.
func (r *TransactionRepository) InsertBatch(ctx context.Context, records []*domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "failed to insert transactions")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		cp := *rec
		cp.ID = int64(len(r.records) + 1)
		r.records = append(r.records, &cp)
	}
	return nil
}

// CountAll returns the number of records regardless of any predicate.
func (r *TransactionRepository) CountAll(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), ctx.Err()
}
