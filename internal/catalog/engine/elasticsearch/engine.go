package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/ShadEl7/her-essence-website/internal/catalog"
	"github.com/ShadEl7/her-essence-website/internal/domain"
	apperrors "github.com/ShadEl7/her-essence-website/pkg/errors"
	"github.com/ShadEl7/her-essence-website/pkg/logger"
)

// maxResults caps a single search. The storefront collection is small.
const maxResults = 100

// Config configures the Elasticsearch engine.
type Config struct {
	Addresses []string
	Index     string
	Transport http.RoundTripper
}

// Engine is an Elasticsearch-backed catalog.Engine.
type Engine struct {
	client    *elasticsearch.Client
	indexName string
	logger    *slog.Logger

	// positions records indexing order so hits sort the way the memory
	// engine returns them. Replacing a product keeps its position.
	mu        sync.Mutex
	positions map[domain.ItemID]int64
}

// document is the indexed form of a product.
type document struct {
	catalog.Product
	Position int64 `json:"position"`
}

var _ catalog.Engine = (*Engine)(nil)

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			Source catalog.Product `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type esGetResponse struct {
	Found  bool            `json:"found"`
	Source catalog.Product `json:"_source"`
}

type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}

type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New connects to Elasticsearch and creates the products index if it does
// not exist.
func New(ctx context.Context, cfg Config, l *slog.Logger) (*Engine, error) {
	if cfg.Index == "" {
		cfg.Index = DefaultIndexName
	}
	if l == nil {
		l = logger.Discard()
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}

	e := &Engine{
		client:    client,
		indexName: cfg.Index,
		logger:    l,
		positions: make(map[domain.ItemID]int64),
	}
	if err := e.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("elasticsearch: ensure index: %w", err)
	}
	return e, nil
}

// Ping checks whether the cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

func (e *Engine) ensureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.indexName}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	_ = res.Body.Close()

	if res.StatusCode == http.StatusOK {
		e.logger.InfoContext(ctx, "elasticsearch index already exists", slog.String("index", e.indexName))
		return nil
	}

	res, err = e.client.Indices.Create(
		e.indexName,
		e.client.Indices.Create.WithBody(strings.NewReader(buildIndexMapping())),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return responseError("create index", res.Status(), res.Body)
	}

	e.logger.InfoContext(ctx, "elasticsearch index created", slog.String("index", e.indexName))
	return nil
}

// Index adds or replaces a product.
func (e *Engine) Index(ctx context.Context, p catalog.Product) error {
	data, err := json.Marshal(e.document(p))
	if err != nil {
		return fmt.Errorf("elasticsearch index: marshal product: %w", err)
	}

	res, err := e.client.Index(
		e.indexName,
		bytes.NewReader(data),
		e.client.Index.WithDocumentID(p.ID.String()),
		e.client.Index.WithRefresh("true"),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return responseError("elasticsearch index", res.Status(), res.Body)
	}

	e.logger.DebugContext(ctx, "indexed product", slog.String("id", p.ID.String()))
	return nil
}

// BulkIndex indexes products with a single NDJSON bulk request.
func (e *Engine) BulkIndex(ctx context.Context, ps []catalog.Product) error {
	if len(ps) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range ps {
		meta := map[string]any{"index": map[string]any{"_index": e.indexName, "_id": p.ID.String()}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("elasticsearch bulk: encode meta: %w", err)
		}
		if err := enc.Encode(e.document(p)); err != nil {
			return fmt.Errorf("elasticsearch bulk: encode product: %w", err)
		}
	}

	res, err := e.client.Bulk(
		&buf,
		e.client.Bulk.WithIndex(e.indexName),
		e.client.Bulk.WithRefresh("true"),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch bulk: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return responseError("elasticsearch bulk", res.Status(), res.Body)
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulkResp); err != nil {
		return fmt.Errorf("elasticsearch bulk: decode response: %w", err)
	}
	if bulkResp.Errors {
		for _, item := range bulkResp.Items {
			if item.Index.Error.Type != "" {
				return fmt.Errorf("elasticsearch bulk: product %s: %s: %s",
					item.Index.ID, item.Index.Error.Type, item.Index.Error.Reason)
			}
		}
		return fmt.Errorf("elasticsearch bulk: request reported errors")
	}

	e.logger.DebugContext(ctx, "bulk indexed products", slog.Int("count", len(ps)))
	return nil
}

func (e *Engine) document(p catalog.Product) document {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos, ok := e.positions[p.ID]
	if !ok {
		pos = int64(len(e.positions))
		e.positions[p.ID] = pos
	}
	return document{Product: p, Position: pos}
}

// Search matches query as a case-insensitive substring of name or category.
func (e *Engine) Search(ctx context.Context, query string) ([]catalog.Product, error) {
	data, err := json.Marshal(buildSearchQuery(query))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.indexName),
		e.client.Search.WithBody(bytes.NewReader(data)),
		e.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return nil, responseError("elasticsearch search", res.Status(), res.Body)
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}

	products := make([]catalog.Product, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		products = append(products, hit.Source)
	}
	return products, nil
}

// Get returns the product with id.
func (e *Engine) Get(ctx context.Context, id domain.ItemID) (catalog.Product, error) {
	res, err := e.client.Get(e.indexName, id.String(), e.client.Get.WithContext(ctx))
	if err != nil {
		return catalog.Product{}, fmt.Errorf("elasticsearch get: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusNotFound {
		return catalog.Product{}, apperrors.NotFound("product", id.String())
	}
	if res.IsError() {
		return catalog.Product{}, responseError("elasticsearch get", res.Status(), res.Body)
	}

	var doc esGetResponse
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return catalog.Product{}, fmt.Errorf("elasticsearch get: decode response: %w", err)
	}
	if !doc.Found {
		return catalog.Product{}, apperrors.NotFound("product", id.String())
	}
	return doc.Source, nil
}

// DeleteIndex removes the products index. A missing index is not an error.
func (e *Engine) DeleteIndex(ctx context.Context) error {
	res, err := e.client.Indices.Delete([]string{e.indexName}, e.client.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch delete index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("elasticsearch delete index", res.Status(), res.Body)
	}

	e.mu.Lock()
	clear(e.positions)
	e.mu.Unlock()
	return nil
}

// buildSearchQuery matches the query against the keyword subfields with
// case-insensitive wildcards, ordered by indexing position.
func buildSearchQuery(query string) map[string]any {
	pattern := "*" + escapeWildcard(query) + "*"
	wildcard := func(field string) map[string]any {
		return map[string]any{
			"wildcard": map[string]any{
				field: map[string]any{
					"value":            pattern,
					"case_insensitive": true,
				},
			},
		}
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should": []any{
					wildcard("name.keyword"),
					wildcard("category.keyword"),
				},
				"minimum_should_match": 1,
			},
		},
		"sort": []any{
			map[string]any{"position": "asc"},
		},
		"size": maxResults,
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}

func responseError(op, status string, body io.Reader) error {
	var errResp esErrorResponse
	if err := json.NewDecoder(body).Decode(&errResp); err == nil && errResp.Error.Type != "" {
		return fmt.Errorf("%s: %s: %s", op, errResp.Error.Type, errResp.Error.Reason)
	}
	return fmt.Errorf("%s: unexpected status %s", op, status)
}
