// Package ocrclient talks to the external OCR/table-extraction service. The
// service runs extraction as a long-running job: submit a document key, poll
// until the job reaches a terminal state, then collect per-page text.
package ocrclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/robostock/catalog-ingest/internal/entity"
)

// Job states reported by the service.
const (
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

// Config for the OCR client.
type Config struct {
	BaseURL      string
	PollInterval time.Duration // default 3s
	Timeout      time.Duration // per-request http timeout
}

// Client implements source.Lister and source.TextProvider for OCR-backed
// documents.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// List returns the service's ingestible documents (it filters to the
// document types it can extract).
func (c *Client) List(ctx context.Context) ([]entity.SourceDocument, error) {
	var out struct {
		Documents []struct {
			Key      string `json:"key"`
			FileName string `json:"file_name"`
		} `json:"documents"`
	}
	if err := c.getJSON(ctx, "/documents", &out); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	docs := make([]entity.SourceDocument, 0, len(out.Documents))
	for _, d := range out.Documents {
		name := d.FileName
		if name == "" {
			name = d.Key
		}
		docs = append(docs, entity.SourceDocument{
			FileName:  name,
			OriginKey: d.Key,
			Kind:      entity.SourcePDFExtract,
		})
	}
	return docs, nil
}

// FetchText submits an extraction job for the document and polls it to a
// terminal state. A terminal state other than "succeeded" is an error the
// orchestrator counts as a document-level failure.
func (c *Client) FetchText(ctx context.Context, doc entity.SourceDocument) (entity.ExtractedDocument, error) {
	jobID, err := c.submit(ctx, doc.OriginKey)
	if err != nil {
		return entity.ExtractedDocument{}, err
	}
	c.logger.Info("ocr.job.submitted", "key", doc.OriginKey, "job_id", jobID)

	for {
		job, err := c.job(ctx, jobID)
		if err != nil {
			return entity.ExtractedDocument{}, err
		}
		switch job.Status {
		case statusSucceeded:
			return assemble(job.Pages), nil
		case statusFailed:
			return entity.ExtractedDocument{}, fmt.Errorf("ocr job %s failed: %s", jobID, job.Error)
		}

		select {
		case <-ctx.Done():
			return entity.ExtractedDocument{}, ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

type jobState struct {
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Pages  []entity.PageText `json:"pages,omitempty"`
}

func (c *Client) submit(ctx context.Context, key string) (string, error) {
	body, _ := json.Marshal(map[string]string{"document_key": key})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+"/jobs", strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		JobID string `json:"job_id"`
	}
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("submit ocr job for %s: %w", key, err)
	}
	if out.JobID == "" {
		return "", fmt.Errorf("submit ocr job for %s: empty job id", key)
	}
	return out.JobID, nil
}

func (c *Client) job(ctx context.Context, jobID string) (jobState, error) {
	var out jobState
	if err := c.getJSON(ctx, "/jobs/"+url.PathEscape(jobID), &out); err != nil {
		return jobState{}, fmt.Errorf("poll ocr job %s: %w", jobID, err)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(c.cfg.BaseURL, "/")+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.Warn("ocr response body close error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ocr service status %d: %s", resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode ocr response: %w", err)
	}
	return nil
}

// assemble orders pages and joins them into the full text. Page numbers need
// not be contiguous; the order is preserved as the service reported it after
// a stable sort by page number.
func assemble(pages []entity.PageText) entity.ExtractedDocument {
	sorted := make([]entity.PageText, len(pages))
	copy(sorted, pages)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Page < sorted[j].Page })

	var b strings.Builder
	for i, p := range sorted {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.Text)
	}
	return entity.ExtractedDocument{FullText: b.String(), PageMap: sorted}
}
