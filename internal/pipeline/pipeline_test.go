package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/clock"
	"github.com/gatewarden/gatewarden/internal/ratelimit"
	"github.com/gatewarden/gatewarden/internal/waf"
)

type captureSink struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (s *captureSink) Record(event AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *captureSink) all() []AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AuditEvent(nil), s.events...)
}

var testEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newPipeline(limit int, sink AuditSink) (*Pipeline, *clock.Virtual) {
	vc := clock.NewVirtual(testEpoch)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), limit, time.Minute, vc)
	inspector := waf.NewInspector(waf.DefaultCatalog(), 0)
	return New(limiter, inspector, sink, []string{"/admin", "/health"}, vc), vc
}

func request(url, ip string) waf.NormalizedRequest {
	return waf.NormalizedRequest{
		URL:       url,
		Method:    "GET",
		Headers:   map[string]string{},
		ClientIP:  ip,
		UserAgent: "Mozilla/5.0",
	}
}

func TestPipeline_AllowsBenignRequest(t *testing.T) {
	sink := &captureSink{}
	p, _ := newPipeline(100, sink)

	v := p.Decide(context.Background(), request("/search?q=hello", "203.0.113.7"), "/search")

	assert.True(t, v.Allowed)
	assert.Equal(t, waf.ReasonAllowed, v.Reason)
}

func TestPipeline_BlocksAttackWithCategoryReason(t *testing.T) {
	sink := &captureSink{}
	p, _ := newPipeline(100, sink)

	v := p.Decide(context.Background(), request("/admin/../../etc/passwd", "203.0.113.7"), "/admin/../../etc/passwd")

	require.False(t, v.Allowed)
	assert.Equal(t, waf.ReasonPathTraversal, v.Reason)
}

func TestPipeline_RateLimitRunsBeforeInspection(t *testing.T) {
	sink := &captureSink{}
	p, _ := newPipeline(1, sink)
	ctx := context.Background()

	first := p.Decide(ctx, request("/search?q=hello", "203.0.113.7"), "/search")
	require.True(t, first.Allowed)

	// Even an attack URL reports rate_limited once the budget is spent.
	second := p.Decide(ctx, request("/x/../../etc/passwd", "203.0.113.7"), "/x")
	require.False(t, second.Allowed)
	assert.Equal(t, waf.ReasonRateLimited, second.Reason)
	assert.Empty(t, second.DetailFields())
}

func TestPipeline_ExemptPrefixSkipsInspection(t *testing.T) {
	p, _ := newPipeline(100, &captureSink{})

	assert.True(t, p.Exempt("/admin/domains"))
	assert.True(t, p.Exempt("/health"))
	assert.False(t, p.Exempt("/search"))
}

func TestPipeline_EmitsExactlyOneAuditEventPerDecision(t *testing.T) {
	sink := &captureSink{}
	p, _ := newPipeline(100, sink)
	ctx := context.Background()

	p.Decide(ctx, request("/search?q=hello", "203.0.113.7"), "/search")
	p.Decide(ctx, request("/shell.php", "203.0.113.7"), "/shell.php")

	events := sink.all()
	require.Len(t, events, 2)

	assert.Equal(t, waf.ReasonAllowed, events[0].Reason)
	assert.Empty(t, events[0].Details)

	assert.Equal(t, waf.ReasonBlockedExtension, events[1].Reason)
	assert.Equal(t, "203.0.113.7", events[1].ClientKey)
	assert.Equal(t, "GET", events[1].Method)
	assert.Equal(t, "/shell.php", events[1].Path)
	assert.Equal(t, ".php", events[1].Details["extension"])
	assert.Equal(t, testEpoch, events[1].Timestamp)
}

func TestPipeline_ClientKeyPrefersForwardedFor(t *testing.T) {
	p, _ := newPipeline(100, &captureSink{})

	req := request("/search", "192.0.2.1")
	req.Headers["x-forwarded-for"] = "198.51.100.9, 10.0.0.1"

	assert.Equal(t, "198.51.100.9", p.ClientKey(req))
}

func TestPipeline_ClientKeyFallsBackToPeerAddress(t *testing.T) {
	p, _ := newPipeline(100, &captureSink{})

	assert.Equal(t, "192.0.2.1", p.ClientKey(request("/search", "192.0.2.1")))
}

func TestPipeline_RateLimitKeyedPerClient(t *testing.T) {
	p, _ := newPipeline(1, &captureSink{})
	ctx := context.Background()

	require.True(t, p.Decide(ctx, request("/a", "192.0.2.1"), "/a").Allowed)
	assert.False(t, p.Decide(ctx, request("/a", "192.0.2.1"), "/a").Allowed)

	// A different client still has its own budget.
	assert.True(t, p.Decide(ctx, request("/a", "192.0.2.2"), "/a").Allowed)
}

func TestPipeline_NilAuditSinkIsSafe(t *testing.T) {
	p, _ := newPipeline(100, nil)

	v := p.Decide(context.Background(), request("/search?q=hello", "203.0.113.7"), "/search")
	assert.True(t, v.Allowed)
}
