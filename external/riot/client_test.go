package riot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DeadSpoonbill/API-lol-public/internal/platform/logging"
)

func testClient(t *testing.T, handler http.Handler, retry RetryPolicy) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Retry:   retry,
		Logger:  logging.NewNop(),
	})
}

func fastRetry() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     5,
		ThrottleWait:    time.Millisecond,
		ServerErrorWait: time.Millisecond,
	}
}

func TestAccountByRiotID_NotFoundIsAbsent(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), fastRetry())

	doc, err := client.AccountByRiotID(context.Background(), "Hide on bush", "KR1")
	if err != nil {
		t.Fatalf("expected nil error for 404, got=%v", err)
	}
	if doc != nil {
		t.Fatalf("expected absent account, got=%v", doc)
	}
}

func TestAccountByRiotID_EscapesRiotID(t *testing.T) {
	t.Parallel()

	var gotPath string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"puuid":"abc","gameName":"Hide on bush","tagLine":"KR1"}`))
	}), fastRetry())

	doc, err := client.AccountByRiotID(context.Background(), "Hide on bush", "KR1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["puuid"] != "abc" {
		t.Fatalf("expected puuid=abc, got=%v", doc["puuid"])
	}
	want := "/riot/account/v1/accounts/by-riot-id/Hide%20on%20bush/KR1"
	if gotPath != want {
		t.Fatalf("expected path %q, got=%q", want, gotPath)
	}
}

func TestGet_RetriesThrottleUntilSuccess(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}), fastRetry())

	doc, err := client.Match(context.Background(), "EUW1_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["ok"] != true {
		t.Fatalf("expected decoded body after retries, got=%v", doc)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got=%d", got)
	}
}

func TestGet_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}), fastRetry())

	if _, err := client.Match(context.Background(), "EUW1_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got=%d", got)
	}
}

func TestGet_FatalStatusStopsImmediately(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"status":{"message":"Forbidden"}}`))
	}), fastRetry())

	_, err := client.Match(context.Background(), "EUW1_1")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got=%v", err)
	}
	if httpErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status 403, got=%d", httpErr.StatusCode)
	}
	if httpErr.Body == "" {
		t.Fatalf("expected response body preserved in error")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got=%d", got)
	}
}

func TestGet_AttemptBudgetExhaustion(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}), RetryPolicy{MaxAttempts: 3, ThrottleWait: time.Millisecond, ServerErrorWait: time.Millisecond})

	_, err := client.Match(context.Background(), "EUW1_1")
	if err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
	if !IsTransient(err) {
		t.Fatalf("expected transient classification, got=%v", err)
	}
}

func TestGet_ContextCancelDuringWait(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}), RetryPolicy{ThrottleWait: time.Minute, ServerErrorWait: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.Match(ctx, "EUW1_1")
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected cancellation error, got=%v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("client did not observe cancellation")
	}
}

func TestGet_SendsAPIKeyHeader(t *testing.T) {
	t.Parallel()

	var gotToken string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Riot-Token")
		w.Write([]byte(`{}`))
	}), fastRetry())

	if _, err := client.Match(context.Background(), "EUW1_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotToken != "test-key" {
		t.Fatalf("expected api key header, got=%q", gotToken)
	}
}

func TestMatchIDs_QueryParameters(t *testing.T) {
	t.Parallel()

	var gotQuery map[string][]string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`["EUW1_1","EUW1_2"]`))
	}), fastRetry())

	queue := 420
	ids, err := client.MatchIDs(context.Background(), "puuid-1", 20, &queue, "ranked")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got=%d", len(ids))
	}
	for key, want := range map[string]string{
		"start": "0",
		"count": "20",
		"queue": "420",
		"type":  "ranked",
	} {
		if got := gotQuery[key]; len(got) != 1 || got[0] != want {
			t.Fatalf("expected query %s=%s, got=%v", key, want, got)
		}
	}
}

func TestCollectMatchIDs_SplitsQuotaAcrossQueues(t *testing.T) {
	t.Parallel()

	var counts []string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counts = append(counts, r.URL.Query().Get("count"))
		switch r.URL.Query().Get("queue") {
		case "420":
			w.Write([]byte(`["EUW1_1","EUW1_2"]`))
		case "440":
			w.Write([]byte(`["EUW1_2","EUW1_3"]`))
		default:
			w.Write([]byte(`[]`))
		}
	}), fastRetry())

	ids, err := client.CollectMatchIDs(context.Background(), "puuid-1", 30, []int{420, 440, 450, 700}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, count := range counts {
		if count != "8" {
			t.Fatalf("expected per-queue count=8 (ceil of 30/4), request %d got=%s", i, count)
		}
	}

	want := []string{"EUW1_1", "EUW1_2", "EUW1_3"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d deduplicated ids, got=%v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected first-seen order %v, got=%v", want, ids)
		}
	}
}

func TestCollectMatchIDs_NoQueuesMakesSingleListing(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	var gotCount string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		gotCount = r.URL.Query().Get("count")
		w.Write([]byte(`["EUW1_1"]`))
	}), fastRetry())

	ids, err := client.CollectMatchIDs(context.Background(), "puuid-1", 30, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single listing, got=%d", calls.Load())
	}
	if gotCount != "30" {
		t.Fatalf("expected full count on single listing, got=%s", gotCount)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 id, got=%v", ids)
	}
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	fallback := 2 * time.Second
	cases := []struct {
		header string
		want   time.Duration
	}{
		{"5", 5 * time.Second},
		{"0", 0},
		{"", fallback},
		{"soon", fallback},
		{"-1", fallback},
	}
	for _, tc := range cases {
		if got := parseRetryAfter(tc.header, fallback); got != tc.want {
			t.Fatalf("parseRetryAfter(%q): expected %s, got=%s", tc.header, tc.want, got)
		}
	}
}
