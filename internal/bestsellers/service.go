package bestsellers

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aurelle/storefront-backend/pkg/db/models"
	apperrors "github.com/aurelle/storefront-backend/pkg/errors"
	"github.com/aurelle/storefront-backend/pkg/logger"
	"github.com/aurelle/storefront-backend/pkg/metrics"
)

// maxFallbackSteps bounds the trending query's walk into older weeks: the
// current week plus up to four 7-day steps back.
const maxFallbackSteps = 4

const windowLength = 7 * 24 * time.Hour

// OrderSource is the slice of the order store the engine reads.
type OrderSource interface {
	ListAll(ctx context.Context) ([]models.Order, error)
	ListCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Order, error)
}

// ProductSource resolves order-item identifiers against the live catalog.
type ProductSource interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	FindByCatalogRefs(ctx context.Context, refs []string) ([]models.Product, error)
}

// ProductRank is one product's aggregated sales metrics.
type ProductRank struct {
	ProductID     uuid.UUID `json:"productId"`
	CatalogRef    string    `json:"catalogRef"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	OrderCount    int       `json:"orderCount"`
	TotalQuantity int       `json:"totalQuantity"`
}

// CategoryRanking groups ranked products under one canonical category.
type CategoryRanking struct {
	Category string        `json:"category"`
	Products []ProductRank `json:"products"`
}

// WeeklyResult is the trending query's answer, including how far back the
// window had to walk to find data.
type WeeklyResult struct {
	Categories  []CategoryRanking `json:"categories"`
	WindowStart time.Time         `json:"windowStart"`
	WindowEnd   time.Time         `json:"windowEnd"`
	Fallback    bool              `json:"fallback"`
	WeeksBack   int               `json:"weeksBack"`
	Empty       bool              `json:"empty"`
}

// Service computes best-seller rankings fresh from the order store on every
// call. Results are as of the read; there is no cache to go stale.
type Service interface {
	Global(ctx context.Context, limit int) ([]ProductRank, error)
	ByCategory(ctx context.Context, limitPerCategory int) ([]CategoryRanking, error)
	WeeklyByCategory(ctx context.Context, limit int, start, end *time.Time) (*WeeklyResult, error)
}

type service struct {
	orders   OrderSource
	products ProductSource
	metrics  *metrics.AggregationMetrics
	logger   *logger.Logger
	now      func() time.Time
}

// NewService wires the aggregation engine. The metrics sink may be nil.
func NewService(orders OrderSource, products ProductSource, m *metrics.AggregationMetrics, logg *logger.Logger) (Service, error) {
	if orders == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "order source is required")
	}
	if products == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "product source is required")
	}
	if logg == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "logger is required")
	}
	return &service{orders: orders, products: products, metrics: m, logger: logg, now: time.Now}, nil
}

// Global returns the flat ranking across all orders ever placed.
func (s *service) Global(ctx context.Context, limit int) ([]ProductRank, error) {
	s.metrics.IncQuery("global")

	rows, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "scan orders")
	}
	ranks, err := s.reduce(ctx, rows)
	if err != nil {
		return nil, err
	}
	return truncate(ranks, limit), nil
}

// ByCategory returns per-category rankings across all orders ever placed.
func (s *service) ByCategory(ctx context.Context, limitPerCategory int) ([]CategoryRanking, error) {
	s.metrics.IncQuery("by_category")

	rows, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "scan orders")
	}
	ranks, err := s.reduce(ctx, rows)
	if err != nil {
		return nil, err
	}
	return groupByCategory(ranks, limitPerCategory), nil
}

// WeeklyByCategory restricts the reduction to orders created in [start, end).
// Explicit bounds are honored as-is, even when empty. Without bounds the
// window is the last 7 days ending now; an empty window steps back 7 days at
// a time, at most maxFallbackSteps times, and the result reports how far back
// it walked. An exhausted search returns an explicitly empty result rather
// than substituting older or global data.
func (s *service) WeeklyByCategory(ctx context.Context, limit int, start, end *time.Time) (*WeeklyResult, error) {
	s.metrics.IncQuery("weekly")

	if (start == nil) != (end == nil) {
		return nil, apperrors.New(apperrors.CodeValidation, "start and end must be supplied together")
	}

	if start != nil {
		if !end.After(*start) {
			return nil, apperrors.New(apperrors.CodeValidation, "end must be after start")
		}
		categories, err := s.reduceWindow(ctx, *start, *end, limit)
		if err != nil {
			return nil, err
		}
		return &WeeklyResult{
			Categories:  categories,
			WindowStart: *start,
			WindowEnd:   *end,
			Empty:       len(categories) == 0,
		}, nil
	}

	anchor := s.now().UTC()
	for step := 0; step <= maxFallbackSteps; step++ {
		windowEnd := anchor.Add(-time.Duration(step) * windowLength)
		windowStart := windowEnd.Add(-windowLength)

		categories, err := s.reduceWindow(ctx, windowStart, windowEnd, limit)
		if err != nil {
			return nil, err
		}
		if len(categories) > 0 {
			s.metrics.ObserveFallbackDepth(step)
			return &WeeklyResult{
				Categories:  categories,
				WindowStart: windowStart,
				WindowEnd:   windowEnd,
				Fallback:    step > 0,
				WeeksBack:   step,
			}, nil
		}
	}

	s.metrics.ObserveFallbackDepth(maxFallbackSteps)
	return &WeeklyResult{
		Categories:  []CategoryRanking{},
		WindowStart: anchor.Add(-time.Duration(maxFallbackSteps)*windowLength - windowLength),
		WindowEnd:   anchor.Add(-time.Duration(maxFallbackSteps) * windowLength),
		Fallback:    true,
		WeeksBack:   maxFallbackSteps,
		Empty:       true,
	}, nil
}

func (s *service) reduceWindow(ctx context.Context, start, end time.Time, limit int) ([]CategoryRanking, error) {
	rows, err := s.orders.ListCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "scan orders")
	}
	ranks, err := s.reduce(ctx, rows)
	if err != nil {
		return nil, err
	}
	return groupByCategory(ranks, limit), nil
}

// reduce flattens order items, normalizes their identifiers against the
// catalog and accumulates metrics per product. Items whose product has left
// the catalog are dropped. A product appearing in one order under both
// identifier schemes still counts that order once.
func (s *service) reduce(ctx context.Context, rows []models.Order) ([]ProductRank, error) {
	var ids []uuid.UUID
	var refs []string
	seenID := map[uuid.UUID]bool{}
	seenRef := map[string]bool{}
	for _, order := range rows {
		for _, item := range order.Items {
			if item.ProductID != nil && *item.ProductID != uuid.Nil {
				if !seenID[*item.ProductID] {
					seenID[*item.ProductID] = true
					ids = append(ids, *item.ProductID)
				}
			} else if item.CatalogRef != "" {
				if !seenRef[item.CatalogRef] {
					seenRef[item.CatalogRef] = true
					refs = append(refs, item.CatalogRef)
				}
			}
		}
	}

	byID := map[uuid.UUID]*models.Product{}
	byRef := map[string]*models.Product{}
	if len(ids) > 0 {
		found, err := s.products.FindByIDs(ctx, ids)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDependency, err, "resolve products")
		}
		for i := range found {
			product := &found[i]
			byID[product.ID] = product
			byRef[product.CatalogRef] = product
		}
	}
	if len(refs) > 0 {
		var unresolved []string
		for _, ref := range refs {
			if _, ok := byRef[ref]; !ok {
				unresolved = append(unresolved, ref)
			}
		}
		if len(unresolved) > 0 {
			found, err := s.products.FindByCatalogRefs(ctx, unresolved)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.CodeDependency, err, "resolve products")
			}
			for i := range found {
				product := &found[i]
				byID[product.ID] = product
				byRef[product.CatalogRef] = product
			}
		}
	}

	acc := map[uuid.UUID]*ProductRank{}
	for _, order := range rows {
		countedInOrder := map[uuid.UUID]bool{}
		for _, item := range order.Items {
			var product *models.Product
			if item.ProductID != nil && *item.ProductID != uuid.Nil {
				product = byID[*item.ProductID]
			} else if item.CatalogRef != "" {
				product = byRef[item.CatalogRef]
			}
			if product == nil {
				continue
			}

			rank, ok := acc[product.ID]
			if !ok {
				rank = &ProductRank{
					ProductID:  product.ID,
					CatalogRef: product.CatalogRef,
					Name:       product.Name,
					Category:   product.Category,
				}
				acc[product.ID] = rank
			}
			rank.TotalQuantity += item.Qty
			if !countedInOrder[product.ID] {
				countedInOrder[product.ID] = true
				rank.OrderCount++
			}
		}
	}

	ranks := make([]ProductRank, 0, len(acc))
	for _, rank := range acc {
		ranks = append(ranks, *rank)
	}
	sortRanks(ranks)
	return ranks, nil
}

func sortRanks(ranks []ProductRank) {
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].OrderCount != ranks[j].OrderCount {
			return ranks[i].OrderCount > ranks[j].OrderCount
		}
		if ranks[i].TotalQuantity != ranks[j].TotalQuantity {
			return ranks[i].TotalQuantity > ranks[j].TotalQuantity
		}
		return ranks[i].Name < ranks[j].Name
	})
}

func truncate(ranks []ProductRank, limit int) []ProductRank {
	if limit > 0 && len(ranks) > limit {
		return ranks[:limit]
	}
	return ranks
}

// groupByCategory buckets ranks under the canonical form of their category
// and ranks within each bucket. Categories are returned alphabetically for a
// stable payload.
func groupByCategory(ranks []ProductRank, limitPerCategory int) []CategoryRanking {
	buckets := map[string][]ProductRank{}
	for _, rank := range ranks {
		key := CanonicalCategory(rank.Category)
		if key == "" {
			key = "uncategorized"
		}
		buckets[key] = append(buckets[key], rank)
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	grouped := make([]CategoryRanking, 0, len(keys))
	for _, key := range keys {
		products := buckets[key]
		sortRanks(products)
		grouped = append(grouped, CategoryRanking{
			Category: key,
			Products: truncate(products, limitPerCategory),
		})
	}
	return grouped
}

// CanonicalCategory case-folds and collapses internal whitespace so that
// "Home  Decor" and "home decor" land in the same bucket.
func CanonicalCategory(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}
