package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kapu/fitplan-engine-go/internal/domain"
	"github.com/kapu/fitplan-engine-go/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "github.com/kapu/fitplan-engine-go/internal/service/catalog"

// Page is one page of the upstream catalog. Next is empty on the last page.
type Page struct {
	Records []domain.RawRecord
	Next    string
}

// PageFetcher fetches a single catalog page.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*Page, error)
}

// Client talks to the paginated wger exerciseinfo endpoint. It never retries;
// a failed page is reported to the caller as a TransientFetchError.
type Client struct {
	httpClient *http.Client
	apiToken   string
	logger     *zap.Logger
}

func NewClient(httpClient *http.Client, apiToken string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		apiToken:   apiToken,
		logger:     logger,
	}
}

// SeedURL builds the first page URL from the base URL and page size.
func SeedURL(baseURL string, pageSize int) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid catalog base url %q: %w", baseURL, err)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("catalog base url must be absolute: %q", baseURL)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type pageEnvelope struct {
	Results json.RawMessage `json:"results"`
	Next    *string         `json:"next"`
}

func (c *Client) FetchPage(ctx context.Context, pageURL string) (*Page, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "catalog.FetchPage")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.url", pageURL))

	page, err := c.fetchPage(ctx, pageURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("catalog.records", len(page.Records)))
	return page, nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.NewTransientFetchError("failed to build catalog request", pageURL, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Token "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Catalog request failed", zap.String("url", pageURL), zap.Error(err))
		return nil, errors.NewTransientFetchError("catalog request failed", pageURL, 0, err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, errors.NewTransientFetchError("failed to read catalog response", pageURL, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Catalog returned non-success status",
			zap.String("url", pageURL),
			zap.Int("status", resp.StatusCode),
		)
		return nil, errors.NewTransientFetchError(
			fmt.Sprintf("catalog returned status %d", resp.StatusCode), pageURL, resp.StatusCode, nil)
	}

	var envelope pageEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.NewTransientFetchError("malformed catalog response", pageURL, resp.StatusCode, err)
	}

	results := bytes.TrimSpace(envelope.Results)
	if len(results) == 0 || results[0] != '[' {
		return nil, errors.NewTransientFetchError("catalog response has no results array", pageURL, resp.StatusCode, nil)
	}

	var records []domain.RawRecord
	if err := json.Unmarshal(results, &records); err != nil {
		return nil, errors.NewTransientFetchError("malformed catalog results", pageURL, resp.StatusCode, err)
	}

	page := &Page{Records: records}
	if envelope.Next != nil && *envelope.Next != "" {
		next, err := resolveNext(pageURL, *envelope.Next)
		if err != nil {
			return nil, errors.NewTransientFetchError("malformed next page link", pageURL, resp.StatusCode, err)
		}
		page.Next = next
	}

	return page, nil
}

// resolveNext turns a relative "next" link into an absolute URL.
func resolveNext(current, next string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
