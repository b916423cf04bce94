package dashboard

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"churnboard.telecomx.org/internal/cache"
	"churnboard.telecomx.org/internal/churn"
	"churnboard.telecomx.org/internal/logging"
	"churnboard.telecomx.org/internal/models"
)

// Service answers dashboard interactions over one loaded dataset.
type Service struct {
	data   *churn.Dataset
	cache  *cache.Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewService wires a dataset with an optional cache. A nil cache computes
// every request directly.
func NewService(data *churn.Dataset, c *cache.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{data: data, cache: c, logger: logger}
}

func (s *Service) Dataset() *churn.Dataset {
	return s.data
}

// Options lists the values offered by the filter controls.
func (s *Service) Options() churn.FilterOptions {
	return s.data.Options()
}

// Tab filters the dataset and resolves one tab. Charts that cannot be drawn
// for the subset are listed in Unavailable instead of failing the request.
func (s *Service) Tab(ctx context.Context, tab churn.TabID, criteria churn.FilterCriteria) (models.TabPayload, error) {
	tab, err := churn.ParseTabID(string(tab))
	if err != nil {
		return models.TabPayload{}, err
	}

	return fetch(ctx, s, []string{"tab", string(tab)}, criteria, func() (models.TabPayload, error) {
		content, err := churn.Resolve(tab, s.data.Filter(criteria))

		unavailable := []models.UnavailableChart{}
		for _, chartErr := range churn.ChartErrors(err) {
			unavailable = append(unavailable, models.UnavailableChart{
				Chart:  chartErr.Chart,
				Reason: chartErr.Err.Error(),
			})
		}
		if len(unavailable) > 0 {
			logging.LogOperation(s.logger, "tab_partially_resolved",
				slog.String("tab", string(tab)),
				slog.String("filter", criteria.String()),
				slog.Int("unavailable", len(unavailable)))
		}

		return models.TabPayload{
			Filter:      models.NewFilterSelection(criteria),
			Content:     content,
			Unavailable: unavailable,
		}, nil
	})
}

// Summary computes the KPI cards for the filtered subset. It returns a
// *churn.MissingCategoryError when the subset lacks a churn category.
func (s *Service) Summary(ctx context.Context, criteria churn.FilterCriteria) (models.SummaryPayload, error) {
	return fetch(ctx, s, []string{"summary"}, criteria, func() (models.SummaryPayload, error) {
		summary, err := churn.Summarize(s.data.Filter(criteria))
		if err != nil {
			return models.SummaryPayload{}, err
		}
		return models.SummaryPayload{
			Filter:  models.NewFilterSelection(criteria),
			Summary: summary,
		}, nil
	})
}

// fetch coalesces identical concurrent requests and serves them from the
// cache when one is configured. Waiters stop on ctx cancellation; the shared
// computation runs to completion.
func fetch[T any](ctx context.Context, s *Service, parts []string, criteria churn.FilterCriteria, compute func() (T, error)) (T, error) {
	sel := models.NewFilterSelection(criteria)
	parts = append(parts, sel.Contract, sel.InternetService, s.data.Fingerprint())

	key, err := s.cache.BuildKey(ctx, parts...)
	if err != nil {
		logging.LogError(s.logger, "cache key unavailable", err)
		key = cache.JoinKey(parts...)
	}

	resultChan := s.group.DoChan(key, func() (any, error) {
		var out T
		err := s.cache.FetchJSON(context.WithoutCancel(ctx), key, &out, func(context.Context) (any, error) {
			return compute()
		})
		return out, err
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
