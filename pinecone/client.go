// Package pinecone is a minimal data-plane client for a Pinecone serverless
// index: upsert, query, stats, and namespace clear. It speaks to the index
// host directly; control-plane operations are not needed here.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nyayamitra-backend/logger"
	"nyayamitra-backend/models"
)

const (
	maxRetries     = 3
	initialBackoff = 1 * time.Second
)

type Config struct {
	APIKey     string
	IndexHost  string
	Namespace  string
	APIVersion string
	Timeout    time.Duration
}

type Client struct {
	log  *logger.Logger
	cfg  Config
	http *http.Client
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		log = logger.Nop()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing Pinecone API key")
	}
	if strings.TrimSpace(cfg.IndexHost) == "" {
		return nil, fmt.Errorf("missing Pinecone index host")
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = "2025-10"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		log:  log.With("client", "PineconeClient"),
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// baseURL accepts either a bare index host or a full URL with scheme.
func (c *Client) baseURL() string {
	host := strings.TrimRight(strings.TrimSpace(c.cfg.IndexHost), "/")
	if strings.Contains(host, "://") {
		return host
	}
	return "https://" + host
}

type upsertRequest struct {
	Vectors   []models.VectorRecord `json:"vectors"`
	Namespace string                `json:"namespace,omitempty"`
}

type upsertResponse struct {
	UpsertedCount int64 `json:"upsertedCount"`
}

func (c *Client) Upsert(ctx context.Context, records []models.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	resp, err := doJSON[upsertResponse](c, ctx, "/vectors/upsert", upsertRequest{
		Vectors:   records,
		Namespace: c.cfg.Namespace,
	})
	if err != nil {
		return err
	}
	c.log.Debug("upserted vectors", "count", resp.UpsertedCount)
	return nil
}

type queryRequest struct {
	Namespace       string    `json:"namespace,omitempty"`
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata,omitempty"`
}

type queryResponse struct {
	Matches []models.VectorMatch `json:"matches"`
}

func (c *Client) Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]models.VectorMatch, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector required")
	}
	if topK <= 0 {
		topK = 10
	}
	resp, err := doJSON[queryResponse](c, ctx, "/query", queryRequest{
		Namespace:       c.cfg.Namespace,
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: includeMetadata,
	})
	if err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

type statsResponse struct {
	Namespaces map[string]struct {
		RecordCount int64 `json:"recordCount"`
		VectorCount int64 `json:"vectorCount"`
	} `json:"namespaces"`
	Dimension     int     `json:"dimension"`
	IndexFullness float64 `json:"indexFullness"`
	// Newer API versions report totalRecordCount, older ones totalVectorCount.
	TotalRecordCount int64 `json:"totalRecordCount"`
	TotalVectorCount int64 `json:"totalVectorCount"`
}

func (c *Client) DescribeStats(ctx context.Context) (*models.IndexStats, error) {
	resp, err := doJSON[statsResponse](c, ctx, "/describe_index_stats", struct{}{})
	if err != nil {
		return nil, err
	}
	total := resp.TotalRecordCount
	if total == 0 && resp.TotalVectorCount > 0 {
		total = resp.TotalVectorCount
	}
	stats := &models.IndexStats{
		TotalRecordCount: total,
		Dimension:        resp.Dimension,
		IndexFullness:    resp.IndexFullness,
	}
	if len(resp.Namespaces) > 0 {
		stats.Namespaces = make(map[string]int64, len(resp.Namespaces))
		for name, ns := range resp.Namespaces {
			count := ns.RecordCount
			if count == 0 && ns.VectorCount > 0 {
				count = ns.VectorCount
			}
			stats.Namespaces[name] = count
		}
	}
	return stats, nil
}

type deleteRequest struct {
	DeleteAll bool   `json:"deleteAll"`
	Namespace string `json:"namespace,omitempty"`
}

// DeleteAll clears the configured namespace. Serverless indexes answer 404
// when the namespace has never been written; that means there is nothing to
// delete, so it is treated as success.
func (c *Client) DeleteAll(ctx context.Context) error {
	_, err := doJSON[struct{}](c, ctx, "/vectors/delete", deleteRequest{
		DeleteAll: true,
		Namespace: c.cfg.Namespace,
	})
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		c.log.Debug("namespace not found on delete, nothing to clear", "namespace", c.cfg.Namespace)
		return nil
	}
	return err
}

type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("pinecone http %d: %s", e.Status, e.Body)
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func doJSON[T any](c *Client, ctx context.Context, path string, body any) (*T, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var lastErr error
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			c.log.Warn("retrying pinecone request", "path", path, "attempt", attempt+1, "backoff", backoff)
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL()+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Api-Key", c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Pinecone-Api-Version", c.cfg.APIVersion)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			var out T
			if len(raw) == 0 {
				return &out, nil
			}
			if err := json.Unmarshal(raw, &out); err != nil {
				return nil, fmt.Errorf("pinecone decode error: %w", err)
			}
			return &out, nil
		}

		reqErr := &apiError{Status: resp.StatusCode, Body: string(raw)}
		if !retryable(resp.StatusCode) {
			return nil, reqErr
		}
		lastErr = reqErr
		if resp.StatusCode == http.StatusTooManyRequests {
			if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
				backoff = time.Duration(secs) * time.Second
			}
		}
	}
	return nil, fmt.Errorf("pinecone %s failed after %d attempts: %w", path, maxRetries, lastErr)
}
