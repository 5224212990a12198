package llm

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robostock/catalog-ingest/internal/entity"
)

type fakeClient struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeClient) Complete(_ context.Context, req CompletionRequest) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, req.Prompt)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return f.responses[len(f.responses)-1], nil
}

func testManifest() *entity.Manifest {
	return &entity.Manifest{Vendors: []entity.Vendor{{
		VendorName: "ABB",
		ProductGroups: []entity.ProductGroup{{
			ProductGroup: "Arms",
			Items:        []string{"Robo Arm"},
		}},
	}}}
}

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, RateLimitWait: time.Millisecond, ServerErrorWait: time.Millisecond}
}

func TestMatch_EmptyTextSkipsService(t *testing.T) {
	fc := &fakeClient{responses: []string{`{"products":[]}`}}
	m, err := NewMatcher(fc, fastPolicy(), nil)
	require.NoError(t, err)

	got, dropped := m.Match(context.Background(), "   \n\t ", testManifest())
	assert.Empty(t, got)
	assert.Zero(t, dropped)
	assert.Zero(t, fc.calls)
}

func TestMatch_DecodesProducts(t *testing.T) {
	fc := &fakeClient{responses: []string{
		`{"products":[{"name":"Robo Arm","brand":"ABB","product_type":"Arm","price":99.5,"page":3}]}`,
	}}
	m, err := NewMatcher(fc, fastPolicy(), nil)
	require.NoError(t, err)

	got, dropped := m.Match(context.Background(), "Robo Arm brochure", testManifest())
	assert.Zero(t, dropped)
	require.Len(t, got, 1)
	assert.Equal(t, "Robo Arm", got[0].Name)
	assert.Equal(t, "ABB", got[0].Brand)
	require.NotNil(t, got[0].Price)
	assert.Equal(t, 99.5, *got[0].Price)
	require.NotNil(t, got[0].Page)
	assert.Equal(t, 3, *got[0].Page)
}

func TestMatch_PromptEmbedsManifestAndText(t *testing.T) {
	fc := &fakeClient{responses: []string{`{"products":[]}`}}
	m, err := NewMatcher(fc, fastPolicy(), nil)
	require.NoError(t, err)

	_, _ = m.Match(context.Background(), "some document text here", testManifest())
	require.Len(t, fc.prompts, 1)
	assert.Contains(t, fc.prompts[0], "ABB")
	assert.Contains(t, fc.prompts[0], "Robo Arm")
	assert.Contains(t, fc.prompts[0], "some document text here")
}

func TestMatch_InvalidCandidateSkipped(t *testing.T) {
	fc := &fakeClient{responses: []string{
		`{"products":[{"name":"No Brand Here"},{"name":"Robo Arm","brand":"ABB"}]}`,
	}}
	m, err := NewMatcher(fc, fastPolicy(), nil)
	require.NoError(t, err)

	got, dropped := m.Match(context.Background(), "text", testManifest())
	require.Len(t, got, 1)
	assert.Equal(t, "Robo Arm", got[0].Name)
	assert.Equal(t, 1, dropped)
}

func TestMatch_NullOptionalFieldsFlowThroughAsAbsent(t *testing.T) {
	fc := &fakeClient{responses: []string{
		`{"products":[{"name":"Robo Arm","brand":"ABB","price":null,"sub_type":null,"page":null}]}`,
	}}
	m, err := NewMatcher(fc, fastPolicy(), nil)
	require.NoError(t, err)

	got, dropped := m.Match(context.Background(), "text", testManifest())
	assert.Zero(t, dropped)
	require.Len(t, got, 1)
	assert.Equal(t, "Robo Arm", got[0].Name)
	assert.Equal(t, "ABB", got[0].Brand)
	assert.Nil(t, got[0].Price)
	assert.Nil(t, got[0].Page)
	assert.Empty(t, got[0].SubType)
}

func TestMatch_NullMandatoryFieldStillRejected(t *testing.T) {
	fc := &fakeClient{responses: []string{
		`{"products":[{"name":null,"brand":"ABB"},{"name":"Robo Arm","brand":"ABB"}]}`,
	}}
	m, err := NewMatcher(fc, fastPolicy(), nil)
	require.NoError(t, err)

	got, dropped := m.Match(context.Background(), "text", testManifest())
	assert.Equal(t, 1, dropped)
	require.Len(t, got, 1)
	assert.Equal(t, "Robo Arm", got[0].Name)
}

func TestMatch_UnparseableResponseIsZeroMatches(t *testing.T) {
	fc := &fakeClient{responses: []string{`not json at all`}}
	m, err := NewMatcher(fc, fastPolicy(), nil)
	require.NoError(t, err)

	got, dropped := m.Match(context.Background(), "text", testManifest())
	assert.Empty(t, got)
	assert.Zero(t, dropped)
}

func TestMatch_RateLimitRetriedThreeTimesThenEmpty(t *testing.T) {
	rl := &StatusError{Status: http.StatusTooManyRequests}
	fc := &fakeClient{errs: []error{rl, rl, rl}}
	m, err := NewMatcher(fc, fastPolicy(), nil)
	require.NoError(t, err)

	got, _ := m.Match(context.Background(), "text", testManifest())
	assert.Empty(t, got)
	assert.Equal(t, 3, fc.calls)
}

func TestMatch_ServerErrorRetriedThenSucceeds(t *testing.T) {
	fc := &fakeClient{
		errs:      []error{&StatusError{Status: http.StatusServiceUnavailable}, nil},
		responses: []string{"", `{"products":[{"name":"Robo Arm","brand":"ABB"}]}`},
	}
	m, err := NewMatcher(fc, fastPolicy(), nil)
	require.NoError(t, err)

	got, _ := m.Match(context.Background(), "text", testManifest())
	require.Len(t, got, 1)
	assert.Equal(t, 2, fc.calls)
}

func TestMatch_PermanentErrorNotRetried(t *testing.T) {
	fc := &fakeClient{errs: []error{&StatusError{Status: http.StatusUnauthorized}}}
	m, err := NewMatcher(fc, fastPolicy(), nil)
	require.NoError(t, err)

	got, _ := m.Match(context.Background(), "text", testManifest())
	assert.Empty(t, got)
	assert.Equal(t, 1, fc.calls)
}

func TestBackoffFor_Taxonomy(t *testing.T) {
	p := DefaultRetryPolicy()

	wait, ok := p.BackoffFor(&StatusError{Status: 429})
	assert.True(t, ok)
	assert.Equal(t, 60*time.Second, wait)

	wait, ok = p.BackoffFor(&StatusError{Status: 429, RetryAfter: 5 * time.Second})
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, wait)

	wait, ok = p.BackoffFor(&StatusError{Status: 503})
	assert.True(t, ok)
	assert.Equal(t, 10*time.Second, wait)

	wait, ok = p.BackoffFor(&StatusError{Status: 500})
	assert.True(t, ok)
	assert.Equal(t, 10*time.Second, wait)

	_, ok = p.BackoffFor(&StatusError{Status: 400})
	assert.False(t, ok)

	_, ok = p.BackoffFor(context.DeadlineExceeded)
	assert.False(t, ok)
}
