package query

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"salesledger/pkg/domain"
	"salesledger/pkg/logger"
)

// Store is the read side of the record store. Implementations must evaluate
// a Predicate exactly as Predicate.Match does.
type Store interface {
	Select(ctx context.Context, pred Predicate, order Order, offset, limit int) ([]*domain.Transaction, error)
	Count(ctx context.Context, pred Predicate) (int, error)
	Sum(ctx context.Context, pred Predicate) (Totals, error)
	Distinct(ctx context.Context, field Field) ([]string, error)
	Ping(ctx context.Context) error
}

// Service answers page, stats and filter option queries. It holds no state
// between calls; every call builds its predicate from its own arguments.
type Service struct {
	store  Store
	logger logger.Logger
}

func NewService(store Store, log logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

// GetPage returns the requested window of matching records and the total
// match count. The slice and the count run concurrently; if either fails
// only the error is returned.
func (s *Service) GetPage(ctx context.Context, filters Filters, sortKey SortKey, page PageRequest) (*PageResult, error) {
	pred := Build(filters)
	order := ResolveSort(string(sortKey))

	var (
		data  []*domain.Transaction
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data, err = s.store.Select(gctx, pred, order, page.Offset(), page.Limit())
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx, pred)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to select transaction page", map[string]interface{}{
			"error":     err.Error(),
			"predicate": pred.String(),
		})
		return nil, err
	}

	if data == nil {
		data = []*domain.Transaction{}
	}

	s.logger.Debug("Transaction page selected", map[string]interface{}{
		"predicate": pred.String(),
		"sort":      string(order.Key),
		"page":      page.Page,
		"page_size": page.PageSize,
		"total":     total,
	})

	return &PageResult{
		Data:       data,
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: TotalPages(total, page.PageSize),
	}, nil
}

// GetStats aggregates over every record matching filters, unordered and unwindowed.
func (s *Service) GetStats(ctx context.Context, filters Filters) (*Stats, error) {
	pred := Build(filters)

	totals, err := s.store.Sum(ctx, pred)
	if err != nil {
		s.logger.Error("Failed to aggregate transactions", map[string]interface{}{
			"error":     err.Error(),
			"predicate": pred.String(),
		})
		return nil, err
	}

	stats := totals.Stats()
	return &stats, nil
}

// GetFilterOptions lists the distinct non-empty regions, genders and
// categories in the store, each sorted ascending.
func (s *Service) GetFilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	fields := []Field{FieldRegion, FieldGender, FieldCategory}
	values := make([][]string, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range fields {
		i, f := i, f
		g.Go(func() error {
			vals, err := s.store.Distinct(gctx, f)
			if err != nil {
				return err
			}
			values[i] = cleanOptions(vals)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to load filter options", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	return &domain.FilterOptions{
		Regions:    values[0],
		Genders:    values[1],
		Categories: values[2],
	}, nil
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func cleanOptions(vals []string) []string {
	out := make([]string, 0, len(vals))
	seen := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
