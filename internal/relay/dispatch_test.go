package relay

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"multiai-bot/internal/domain"
)

// stubCompleter is a minimal Completer for dispatch tests. An optional delay
// simulates a slow backend; it respects the per-call context deadline.
type stubCompleter struct {
	text  string
	err   error
	delay time.Duration
}

func (s *stubCompleter) Complete(ctx context.Context, _ string) (string, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.text, s.err
}

type stubStatusError struct{ code int }

func (e *stubStatusError) Error() string       { return fmt.Sprintf("unexpected status %d", e.code) }
func (e *stubStatusError) HTTPStatusCode() int { return e.code }

// ---------------------------------------------------------------------------
// NewDispatcher
// ---------------------------------------------------------------------------

func TestNewDispatcher_NoServices(t *testing.T) {
	_, err := NewDispatcher(nil, time.Second)
	require.ErrorIs(t, err, ErrNoServices)

	_, err = NewDispatcher([]Service{}, time.Second)
	require.ErrorIs(t, err, ErrNoServices)
}

func TestNewDispatcher_ValidatesServices(t *testing.T) {
	_, err := NewDispatcher([]Service{{Name: "", Client: &stubCompleter{}}}, time.Second)
	require.Error(t, err)
	require.Contains(t, err.Error(), "name")

	_, err = NewDispatcher([]Service{{Name: "gemini", Client: nil}}, time.Second)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no client")
}

func TestNewDispatcher_DefaultTimeout(t *testing.T) {
	d, err := NewDispatcher([]Service{{Name: "gemini", Client: &stubCompleter{}}}, 0)
	require.NoError(t, err)
	require.Equal(t, defaultTimeout, d.timeout)
}

func TestServiceNames_ConfigurationOrder(t *testing.T) {
	d, err := NewDispatcher([]Service{
		{Name: "gemini", Client: &stubCompleter{}},
		{Name: "together", Client: &stubCompleter{}},
	}, time.Second)
	require.NoError(t, err)
	require.Equal(t, []string{"gemini", "together"}, d.ServiceNames())
}

// ---------------------------------------------------------------------------
// Dispatch — ordering and attribution
// ---------------------------------------------------------------------------

func TestDispatch_OneOutcomePerServiceInInputOrder(t *testing.T) {
	// The first service is slower than the others; configuration order must
	// still win over completion order.
	d, err := NewDispatcher([]Service{
		{Name: "gemini", Client: &stubCompleter{text: "first", delay: 100 * time.Millisecond}},
		{Name: "together", Client: &stubCompleter{text: "second"}},
		{Name: "openrouter", Client: &stubCompleter{text: "third", delay: 20 * time.Millisecond}},
	}, time.Second)
	require.NoError(t, err)

	result := d.Dispatch(context.Background(), "hi")
	require.Len(t, result, 3)
	require.Equal(t, domain.Success("gemini", "first"), result[0])
	require.Equal(t, domain.Success("together", "second"), result[1])
	require.Equal(t, domain.Success("openrouter", "third"), result[2])
}

func TestDispatch_MixedSuccessAndFailure(t *testing.T) {
	d, err := NewDispatcher([]Service{
		{Name: "svcX", Client: &stubCompleter{text: "A"}},
		{Name: "svcY", Client: &stubCompleter{err: errors.New("bad credential")}},
	}, time.Second)
	require.NoError(t, err)

	result := d.Dispatch(context.Background(), "hi")
	require.Equal(t, domain.AggregateResult{
		domain.Success("svcX", "A"),
		domain.Failure("svcY", "bad credential"),
	}, result)
}

// ---------------------------------------------------------------------------
// Dispatch — timeouts
// ---------------------------------------------------------------------------

func TestDispatch_TimeoutDoesNotAffectOthers(t *testing.T) {
	d, err := NewDispatcher([]Service{
		{Name: "slow", Client: &stubCompleter{text: "never", delay: 5 * time.Second}},
		{Name: "fast", Client: &stubCompleter{text: "ok"}},
	}, 50*time.Millisecond)
	require.NoError(t, err)

	result := d.Dispatch(context.Background(), "hi")
	require.Len(t, result, 2)
	require.Equal(t, domain.Failure("slow", "timeout"), result[0])
	require.Equal(t, domain.Success("fast", "ok"), result[1])
}

func TestDispatch_RunsConcurrently(t *testing.T) {
	// Four services each taking ~80ms must settle in roughly one delay,
	// not four stacked ones.
	services := make([]Service, 4)
	for i := range services {
		services[i] = Service{
			Name:   fmt.Sprintf("svc-%d", i),
			Client: &stubCompleter{text: "ok", delay: 80 * time.Millisecond},
		}
	}
	d, err := NewDispatcher(services, time.Second)
	require.NoError(t, err)

	start := time.Now()
	result := d.Dispatch(context.Background(), "hi")
	elapsed := time.Since(start)

	require.Len(t, result, 4)
	for _, o := range result {
		require.True(t, o.OK)
	}
	require.Less(t, elapsed, 240*time.Millisecond, "dispatch must fan out, not run sequentially")
}

// ---------------------------------------------------------------------------
// Outcome classification
// ---------------------------------------------------------------------------

func TestDispatch_TrimsReply(t *testing.T) {
	d, err := NewDispatcher([]Service{
		{Name: "gemini", Client: &stubCompleter{text: "  hello  "}},
	}, time.Second)
	require.NoError(t, err)

	result := d.Dispatch(context.Background(), "hi")
	require.Equal(t, domain.Success("gemini", "hello"), result[0])
}

func TestDispatch_EmptyReplyIsFailure(t *testing.T) {
	d, err := NewDispatcher([]Service{
		{Name: "gemini", Client: &stubCompleter{text: "   "}},
	}, time.Second)
	require.NoError(t, err)

	result := d.Dispatch(context.Background(), "hi")
	require.Equal(t, domain.Failure("gemini", "empty response"), result[0])
}

func TestFailureReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: "timeout"},
		{name: "wrapped deadline", err: fmt.Errorf("gemini: request failed: %w", context.DeadlineExceeded), want: "timeout"},
		{name: "unauthorized", err: &stubStatusError{code: 401}, want: "bad credential"},
		{name: "forbidden", err: &stubStatusError{code: 403}, want: "bad credential"},
		{name: "rate limited", err: &stubStatusError{code: 429}, want: "rate limited"},
		{name: "server error", err: &stubStatusError{code: 500}, want: "api error 500"},
		{name: "wrapped status", err: fmt.Errorf("together: request failed: %w", &stubStatusError{code: 502}), want: "api error 502"},
		{name: "plain error", err: errors.New("connection refused"), want: "connection refused"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, failureReason(tc.err))
		})
	}
}

func TestFailureReason_TruncatesLongErrors(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "verbose "
	}
	reason := failureReason(errors.New(long))
	require.LessOrEqual(t, len(reason), maxReasonLen+3)
	require.Contains(t, reason, "...")
}
