package vendus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"vendsync/core/snapshot"
	"vendsync/core/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoReferences is returned when a scan is requested with an empty
// reference set. Reported before any network activity.
var ErrNoReferences = errors.New("reference set is empty")

// ScanOptions tunes a single scan.
type ScanOptions struct {
	// MaxPages caps how deep the scan walks the catalog. Default 1000.
	MaxPages int
	// Concurrency is the page fetch fan-out per batch. Default 6.
	Concurrency int
	// BatchPause is the delay inserted between concurrency batches to stay
	// under the source API's rate limits. Default 200ms.
	BatchPause time.Duration
	// AbortOnPageError turns a page-level failure into a scan failure.
	// By default an unavailable page is logged and skipped.
	AbortOnPageError bool
}

func (o ScanOptions) withDefaults() ScanOptions {
	if o.MaxPages <= 0 {
		o.MaxPages = 1000
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 6
	}
	if o.BatchPause <= 0 {
		o.BatchPause = 200 * time.Millisecond
	}
	return o
}

// Scanner resolves a reference set against the source catalog.
type Scanner struct {
	client *Client
	logger *zap.Logger
}

// NewScanner creates a scanner on top of a page fetcher.
func NewScanner(client *Client, logger *zap.Logger) *Scanner {
	return &Scanner{client: client, logger: logger}
}

// Scan walks the catalog page by page until every reference is resolved, the
// catalog is exhausted, or the page cap is hit.
//
// Pages are fetched in batches of opts.Concurrency and joined before matching,
// so the "remaining empty" termination check is evaluated once per batch. Each
// match records the page number from its own fetch result, keeping page and
// position attribution correct regardless of completion order. Duplicate input
// references collapse; whitespace-only references are dropped.
func (s *Scanner) Scan(ctx context.Context, refs []string, opts ScanOptions) (*snapshot.ScanResult, error) {
	opts = opts.withDefaults()

	remaining := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref != "" {
			remaining[ref] = struct{}{}
		}
	}
	if len(remaining) == 0 {
		return nil, ErrNoReferences
	}

	total := len(remaining)
	found := make(map[string]snapshot.MatchEntry)
	perPage := s.client.PerPage()

	page := 1
	pagesScanned := 0
	aborted := false

	s.logger.Info("Catalog scan started",
		zap.Int("references", total),
		zap.Int("max_pages", opts.MaxPages),
		zap.Int("concurrency", opts.Concurrency),
	)

	for {
		// Cooperative cancellation between batches; in-flight fetches are
		// never force-aborted.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch := make([]int, 0, opts.Concurrency)
		for i := 0; i < opts.Concurrency; i++ {
			p := page + i
			if p > opts.MaxPages {
				break
			}
			batch = append(batch, p)
		}
		if len(batch) == 0 {
			aborted = true
			break
		}

		results := make([]PageResult, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		for i, p := range batch {
			i, p := i, p
			g.Go(func() error {
				results[i] = s.client.FetchPage(gctx, p)
				return nil
			})
		}
		// FetchPage reports failures in the result, so Wait only joins.
		_ = g.Wait()

		sawShortPage := false
		for _, res := range results {
			pagesScanned++

			if res.Err != nil {
				if opts.AbortOnPageError {
					return nil, fmt.Errorf("scan aborted: %w", res.Err)
				}
				s.logger.Warn("Page unavailable, continuing scan",
					zap.Int("page", res.Page),
					zap.Int("attempts", res.Attempts),
					zap.Error(res.Err),
				)
				continue
			}

			for pos, record := range res.Records {
				if len(remaining) == 0 {
					break
				}
				for ref := range Match(record, remaining) {
					found[ref] = snapshot.MatchEntry{
						Page:     res.Page,
						Position: pos + 1,
						Product:  normalize(record),
					}
					delete(remaining, ref)
				}
			}

			if len(res.Records) < perPage {
				// Heuristic last-page signal; the API has no has-more flag.
				sawShortPage = true
			}
		}

		page += len(batch)

		if len(remaining) == 0 {
			break
		}
		if sawShortPage {
			break
		}
		if page > opts.MaxPages {
			aborted = true
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.BatchPause):
		}
	}

	notFound := make([]string, 0, len(remaining))
	for ref := range remaining {
		notFound = append(notFound, ref)
	}
	sort.Strings(notFound)

	result := &snapshot.ScanResult{
		SearchDate:    time.Now(),
		TotalSearched: total,
		Found:         found,
		NotFound:      notFound,
		Aborted:       aborted,
		PagesScanned:  pagesScanned,
	}

	s.logger.Info("Catalog scan finished",
		zap.Int("found", len(found)),
		zap.Int("not_found", len(notFound)),
		zap.Int("pages_scanned", pagesScanned),
		zap.Bool("aborted", aborted),
	)

	return result, nil
}

// normalize projects a source record into the snapshot shape.
func normalize(p Product) snapshot.ProductData {
	id64 := int64(utils.ToInt(p.ID.String()))

	reference := p.Reference
	if reference == "" {
		reference = p.Code
	}

	data := snapshot.ProductData{
		ID:        id64,
		Title:     p.Title,
		Reference: reference,
		Code:      p.Code,
		Price:     p.Price,
		Stock:     totalStock(p),
		Status:    p.Status,
		Images:    p.Images,
	}

	data.Colors, data.Sizes = variantAxes(p.Variants)

	if len(p.Variants) > 0 {
		if raw, err := json.Marshal(p.Variants); err == nil {
			data.RawVariants = raw
		}
	}

	return data
}

// totalStock prefers the record-level stock and falls back to summing
// per-location sub-variant quantities.
func totalStock(p Product) int {
	if !p.Stock.IsZero() {
		return int(p.Stock.IntPart())
	}

	sum := 0
	for _, v := range p.Variants {
		for _, sv := range v.SubVariants {
			for _, ls := range sv.Stock {
				sum += int(ls.Stock.IntPart())
			}
		}
	}
	return sum
}

// variantAxes splits sub-variant "COLOR / SIZE" texts into distinct axis values.
func variantAxes(variants []Variant) (colors, sizes []string) {
	seenColor := make(map[string]struct{})
	seenSize := make(map[string]struct{})

	for _, v := range variants {
		for _, sv := range v.SubVariants {
			parts := strings.SplitN(sv.Text, "/", 2)
			if len(parts) == 2 {
				color := strings.TrimSpace(parts[0])
				size := strings.TrimSpace(parts[1])
				if color != "" {
					if _, ok := seenColor[color]; !ok {
						seenColor[color] = struct{}{}
						colors = append(colors, color)
					}
				}
				if size != "" {
					if _, ok := seenSize[size]; !ok {
						seenSize[size] = struct{}{}
						sizes = append(sizes, size)
					}
				}
			}
		}
	}
	return colors, sizes
}
