package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kapu/fitplan-engine-go/internal/constants"
	"github.com/kapu/fitplan-engine-go/internal/domain"
	"github.com/kapu/fitplan-engine-go/internal/util"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const buildKey = "catalog-index"

// IndexStore holds the current catalog index. Readers always observe a
// complete snapshot.
type IndexStore struct {
	current atomic.Pointer[domain.CatalogIndex]
}

func NewIndexStore() *IndexStore {
	return &IndexStore{}
}

func (s *IndexStore) Load() *domain.CatalogIndex {
	return s.current.Load()
}

func (s *IndexStore) Store(idx *domain.CatalogIndex) {
	s.current.Store(idx)
}

func (s *IndexStore) Clear() {
	s.current.Store(nil)
}

// BuilderOptions tunes an IndexBuilder. Zero values fall back to the catalog
// defaults.
type BuilderOptions struct {
	SeedURL       string
	MaxPages      int
	DetachTimeout time.Duration
}

// IndexBuilder aggregates every catalog page into a de-duplicated, sorted name
// index and keeps the last successful build in its store.
type IndexBuilder struct {
	fetcher    PageFetcher
	normalizer *Normalizer
	store      *IndexStore
	opts       BuilderOptions
	group      singleflight.Group
	now        func() time.Time
	logger     *zap.Logger
}

func NewIndexBuilder(fetcher PageFetcher, normalizer *Normalizer, store *IndexStore, opts BuilderOptions, logger *zap.Logger) *IndexBuilder {
	if opts.MaxPages <= 0 {
		opts.MaxPages = constants.CatalogConfig.MaxPages
	}
	if opts.DetachTimeout <= 0 {
		opts.DetachTimeout = constants.CatalogConfig.BuildDetachTimeout
	}
	return &IndexBuilder{
		fetcher:    fetcher,
		normalizer: normalizer,
		store:      store,
		opts:       opts,
		now:        time.Now,
		logger:     logger,
	}
}

// Index returns the cached index when one exists. With bypass set it always
// builds from upstream and the fresh result replaces the cached one.
func (b *IndexBuilder) Index(ctx context.Context, bypass bool) (*domain.CatalogIndex, domain.CatalogSource, error) {
	if bypass {
		idx, err := b.Rebuild(ctx)
		if err != nil {
			return nil, "", err
		}
		return idx, domain.CatalogSourceUpstream, nil
	}

	if idx := b.store.Load(); idx != nil {
		return idx, domain.CatalogSourceCache, nil
	}

	ch := b.group.DoChan(buildKey, func() (any, error) {
		// The shared build outlives any single caller.
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.opts.DetachTimeout)
		defer cancel()

		if idx := b.store.Load(); idx != nil {
			return idx, nil
		}
		idx, err := b.build(buildCtx)
		if err != nil {
			return nil, err
		}
		b.store.Store(idx)
		return idx, nil
	})

	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("waiting for catalog build: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, "", res.Err
		}
		return res.Val.(*domain.CatalogIndex), domain.CatalogSourceUpstream, nil
	}
}

// Rebuild performs a fresh build under the caller's context and stores it on
// success.
func (b *IndexBuilder) Rebuild(ctx context.Context) (*domain.CatalogIndex, error) {
	idx, err := b.build(ctx)
	if err != nil {
		return nil, err
	}
	b.store.Store(idx)
	return idx, nil
}

// Invalidate drops the cached index; the next Index call rebuilds it.
func (b *IndexBuilder) Invalidate() {
	b.store.Clear()
	b.logger.Info("Catalog index invalidated")
}

// Ready reports whether a cached index is available.
func (b *IndexBuilder) Ready() bool {
	return b.store.Load() != nil
}

func (b *IndexBuilder) build(ctx context.Context) (*domain.CatalogIndex, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "catalog.BuildIndex")
	defer span.End()

	started := b.now()
	seen := make(map[string]struct{})
	names := make([]string, 0, 1024)
	pageURL := b.opts.SeedURL
	pages := 0

	for pageURL != "" && pages < b.opts.MaxPages {
		page, err := b.fetcher.FetchPage(ctx, pageURL)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			b.logger.Error("Catalog build failed",
				zap.Int("pages_processed", pages),
				zap.String("url", pageURL),
				zap.Error(err),
			)
			return nil, err
		}
		pages++

		added := 0
		for _, rec := range page.Records {
			entry, ok := b.normalizer.Normalize(rec)
			if !ok {
				continue
			}
			key := util.NameKey(entry.Name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			names = append(names, entry.Name)
			added++
		}

		b.logger.Debug("Catalog page processed",
			zap.Int("page", pages),
			zap.Int("records", len(page.Records)),
			zap.Int("added", added),
		)
		pageURL = page.Next
	}

	truncated := pageURL != ""
	if truncated {
		b.logger.Warn("Catalog page ceiling reached, index is truncated",
			zap.Int("max_pages", b.opts.MaxPages),
			zap.String("next", pageURL),
		)
	}

	SortNames(names)
	idx := domain.NewCatalogIndex(names, b.now(), pages, truncated)

	span.SetAttributes(
		attribute.Int("catalog.pages", pages),
		attribute.Int("catalog.names", len(names)),
		attribute.Bool("catalog.truncated", truncated),
	)
	b.logger.Info("Catalog index built",
		zap.Int("names", len(names)),
		zap.Int("pages", pages),
		zap.Bool("truncated", truncated),
		zap.Duration("duration", b.now().Sub(started)),
	)
	return idx, nil
}

// SortNames orders names alphabetically in English, ignoring case and
// diacritics. Byte order breaks ties so the result is deterministic.
func SortNames(names []string) {
	c := collate.New(language.English, collate.IgnoreCase, collate.IgnoreDiacritics)
	slices.SortFunc(names, func(a, b string) int {
		if r := c.CompareString(a, b); r != 0 {
			return r
		}
		return strings.Compare(a, b)
	})
}
