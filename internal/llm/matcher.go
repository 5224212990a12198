package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/robostock/catalog-ingest/internal/entity"
)

// Matcher turns one document's raw text into candidate product records by
// prompting the reasoning service with the vendor manifest. It is stateless
// across invocations; all failure modes degrade to an empty candidate list so
// a bad document never aborts its batch.
type Matcher struct {
	client CompletionClient
	policy RetryPolicy
	schema *jsonschema.Schema
	logger *slog.Logger
}

// NewMatcher compiles the candidate schema and wires the retry policy.
func NewMatcher(client CompletionClient, policy RetryPolicy, logger *slog.Logger) (*Matcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy()
	}
	schema, err := CompileCandidateSchema()
	if err != nil {
		return nil, err
	}
	return &Matcher{client: client, policy: policy, schema: schema, logger: logger}, nil
}

// Match returns the candidate products the reasoning service finds in
// documentText, plus the number of response elements dropped for failing
// validation or decoding, so callers can count them. Empty or whitespace-only
// text returns an empty list without calling the service. Retry-exhaustion,
// unparseable responses and unclassified errors all return an empty list
// after logging.
func (m *Matcher) Match(ctx context.Context, documentText string, man *entity.Manifest) ([]entity.CandidateProduct, int) {
	if strings.TrimSpace(documentText) == "" {
		m.logger.Debug("matcher.skip_empty_text")
		return nil, 0
	}

	req := CompletionRequest{
		Prompt:         BuildSystemPrompt() + "\n\n" + BuildUserPrompt(documentText, man),
		ResponseFormat: "json_object",
	}

	content, ok := m.completeWithRetry(ctx, req)
	if !ok {
		return nil, 0
	}
	return m.decodeCandidates(content)
}

// completeWithRetry is the bounded retry loop. The policy classifies each
// failure; unclassified errors stop immediately.
func (m *Matcher) completeWithRetry(ctx context.Context, req CompletionRequest) (string, bool) {
	for attempt := 1; ; attempt++ {
		content, err := m.client.Complete(ctx, req)
		if err == nil {
			return content, true
		}

		wait, retryable := m.policy.BackoffFor(err)
		if !retryable {
			m.logger.Error("matcher.complete.failed", "attempt", attempt, "error", err)
			return "", false
		}
		if attempt >= m.policy.MaxAttempts {
			m.logger.Error("matcher.complete.retries_exhausted",
				"attempts", attempt, "error", err)
			return "", false
		}

		m.logger.Warn("matcher.complete.retry",
			"attempt", attempt, "wait", wait, "error", err)
		if err := sleepCtx(ctx, wait); err != nil {
			m.logger.Error("matcher.complete.canceled", "error", err)
			return "", false
		}
	}
}

// decodeCandidates parses the response envelope and validates each element,
// dropping (and logging and counting) the ones that fail instead of
// discarding the batch.
func (m *Matcher) decodeCandidates(content string) ([]entity.CandidateProduct, int) {
	rawItems, err := ParseEnvelope([]byte(content))
	if err != nil {
		m.logger.Warn("matcher.response.unparseable", "error", err, "bytes", len(content))
		return nil, 0
	}

	dropped := 0
	out := make([]entity.CandidateProduct, 0, len(rawItems))
	for i, raw := range rawItems {
		if err := ValidateCandidate(m.schema, raw); err != nil {
			m.logger.Warn("matcher.candidate.invalid", "index", i, "error", err)
			dropped++
			continue
		}
		var c entity.CandidateProduct
		if err := json.Unmarshal(raw, &c); err != nil {
			m.logger.Warn("matcher.candidate.decode_error", "index", i, "error", err)
			dropped++
			continue
		}
		out = append(out, c)
	}
	return out, dropped
}
