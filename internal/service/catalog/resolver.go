package catalog

import (
	"context"
	"strings"

	"github.com/kapu/fitplan-engine-go/internal/constants"
	"github.com/kapu/fitplan-engine-go/internal/domain"
	"github.com/kapu/fitplan-engine-go/internal/util"
	"github.com/kapu/fitplan-engine-go/pkg/errors"
	"go.uber.org/zap"
)

// Resolver looks up a single exercise by name, walking the upstream catalog
// page by page and stopping at the first match.
type Resolver struct {
	fetcher    PageFetcher
	normalizer *Normalizer
	seedURL    string
	maxPages   int
	logger     *zap.Logger
}

func NewResolver(fetcher PageFetcher, normalizer *Normalizer, seedURL string, maxPages int, logger *zap.Logger) *Resolver {
	if maxPages <= 0 {
		maxPages = constants.CatalogConfig.MaxPages
	}
	return &Resolver{
		fetcher:    fetcher,
		normalizer: normalizer,
		seedURL:    seedURL,
		maxPages:   maxPages,
		logger:     logger,
	}
}

func (r *Resolver) Resolve(ctx context.Context, query string) (*domain.CatalogEntry, error) {
	target := util.Normalize(query)
	if target == "" {
		return nil, errors.NewInvalidRequestError("exercise name is required", "name", query)
	}

	pageURL := r.seedURL
	for pages := 0; pageURL != "" && pages < r.maxPages; pages++ {
		page, err := r.fetcher.FetchPage(ctx, pageURL)
		if err != nil {
			return nil, err
		}

		for _, rec := range page.Records {
			entry, ok := r.normalizer.Normalize(rec)
			if !ok {
				continue
			}
			if strings.ToLower(entry.Name) == target {
				r.logger.Debug("Exercise resolved",
					zap.String("query", target),
					zap.Int("page", pages+1),
				)
				return entry, nil
			}
		}
		pageURL = page.Next
	}

	return nil, errors.NewNotFoundError("exercise", target)
}
