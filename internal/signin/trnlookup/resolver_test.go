package trnlookup

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teacherid/internal/signin/metrics"
	"teacherid/internal/signin/models"
	"teacherid/internal/signin/trnlookup/dqt"
)

type finderFunc func(ctx context.Context, c models.TrnLookupCriteria) ([]models.TrnCandidate, error)

func (f finderFunc) FindCandidates(ctx context.Context, c models.TrnLookupCriteria) ([]models.TrnCandidate, error) {
	return f(ctx, c)
}

func candidates(trns ...string) []models.TrnCandidate {
	out := make([]models.TrnCandidate, 0, len(trns))
	for _, trn := range trns {
		out = append(out, models.TrnCandidate{Trn: trn})
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

func TestResolve(t *testing.T) {
	cases := []struct {
		name       string
		criteria   models.TrnLookupCriteria
		candidates []models.TrnCandidate
		want       models.TrnLookupResult
	}{
		{
			name:       "single candidate is a match",
			candidates: candidates("1234567"),
			want:       models.TrnLookupResult{Status: models.TrnLookupStatusFound, Trn: "1234567", Candidates: 1},
		},
		{
			name:       "several candidates are ambiguous",
			criteria:   models.TrnLookupCriteria{NINumber: "AB123456C"},
			candidates: candidates("1234567", "7654321"),
			want:       models.TrnLookupResult{Status: models.TrnLookupStatusPending, Candidates: 2},
		},
		{
			name:     "stated trn with no candidates is pending",
			criteria: models.TrnLookupCriteria{Trn: "1234567"},
			want:     models.TrnLookupResult{Status: models.TrnLookupStatusPending},
		},
		{
			name:     "qts claim with no candidates is pending",
			criteria: models.TrnLookupCriteria{AwardedQts: boolPtr(true)},
			want:     models.TrnLookupResult{Status: models.TrnLookupStatusPending},
		},
		{
			name:     "no claim and no candidates",
			criteria: models.TrnLookupCriteria{AwardedQts: boolPtr(false)},
			want:     models.TrnLookupResult{Status: models.TrnLookupStatusNone},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.criteria, tc.candidates))
		})
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize(models.TrnLookupCriteria{
		FirstName: "  Jo ",
		NINumber:  "ab 12 34 56-c",
		Trn:       "RP 12/34567",
	})
	assert.Equal(t, "Jo", got.FirstName)
	assert.Equal(t, "AB123456C", got.NINumber)
	assert.Equal(t, "1234567", got.Trn)

	assert.Equal(t, "", NormalizeNINumber("  -- "))
	assert.Equal(t, "B12", NormalizeNINumber("ÀB12"))
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "candidate finder is required")

	r, err := New(finderFunc(nil), WithTimeout(-time.Second))
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, r.timeout)
}

func TestLookup(t *testing.T) {
	t.Run("matcher receives normalized criteria", func(t *testing.T) {
		var seen models.TrnLookupCriteria
		r, err := New(finderFunc(func(_ context.Context, c models.TrnLookupCriteria) ([]models.TrnCandidate, error) {
			seen = c
			return candidates("1234567"), nil
		}))
		require.NoError(t, err)

		res := r.Lookup(context.Background(), models.TrnLookupCriteria{NINumber: "ab123456c", Trn: " 1234567 "})
		assert.Equal(t, models.TrnLookupStatusFound, res.Status)
		assert.Equal(t, "1234567", res.Trn)
		assert.Equal(t, "AB123456C", seen.NINumber)
		assert.Equal(t, "1234567", seen.Trn)
	})

	t.Run("timeout resolves as no candidates", func(t *testing.T) {
		var logs bytes.Buffer
		m := metrics.New(prometheus.NewRegistry())
		r, err := New(
			finderFunc(func(ctx context.Context, _ models.TrnLookupCriteria) ([]models.TrnCandidate, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}),
			WithTimeout(10*time.Millisecond),
			WithMetrics(m),
			WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
		)
		require.NoError(t, err)

		res := r.Lookup(context.Background(), models.TrnLookupCriteria{Trn: "1234567"})
		assert.Equal(t, models.TrnLookupStatusPending, res.Status, "stated trn still pending after timeout")
		assert.Equal(t, 1.0, promtestutil.ToFloat64(m.LookupTimeouts))
		assert.Contains(t, logs.String(), `"level":"WARN"`)

		res = r.Lookup(context.Background(), models.TrnLookupCriteria{FirstName: "Jo"})
		assert.Equal(t, models.TrnLookupStatusNone, res.Status)
		assert.Equal(t, 1.0, promtestutil.ToFloat64(m.LookupOutcomes.WithLabelValues("none")))
	})

	t.Run("matcher error resolves as no candidates", func(t *testing.T) {
		var logs bytes.Buffer
		m := metrics.New(prometheus.NewRegistry())
		r, err := New(
			finderFunc(func(context.Context, models.TrnLookupCriteria) ([]models.TrnCandidate, error) {
				return nil, &dqt.MatcherError{Category: dqt.ErrorOutage, Message: "unexpected status 503"}
			}),
			WithMetrics(m),
			WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
		)
		require.NoError(t, err)

		res := r.Lookup(context.Background(), models.TrnLookupCriteria{})
		assert.Equal(t, models.TrnLookupStatusNone, res.Status)
		assert.Equal(t, 1.0, promtestutil.ToFloat64(m.LookupErrors.WithLabelValues(string(dqt.ErrorOutage))))
		assert.Contains(t, logs.String(), `"level":"ERROR"`)
	})

	t.Run("uncategorized error counts as internal", func(t *testing.T) {
		m := metrics.New(prometheus.NewRegistry())
		r, err := New(
			finderFunc(func(context.Context, models.TrnLookupCriteria) ([]models.TrnCandidate, error) {
				return nil, errors.New("boom")
			}),
			WithMetrics(m),
			WithLogger(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))),
		)
		require.NoError(t, err)

		r.Lookup(context.Background(), models.TrnLookupCriteria{})
		assert.Equal(t, 1.0, promtestutil.ToFloat64(m.LookupErrors.WithLabelValues(string(dqt.ErrorInternal))))
	})

	t.Run("identical concurrent lookups share a call", func(t *testing.T) {
		var calls atomic.Int32
		release := make(chan struct{})
		r, err := New(finderFunc(func(context.Context, models.TrnLookupCriteria) ([]models.TrnCandidate, error) {
			calls.Add(1)
			<-release
			return candidates("1234567"), nil
		}))
		require.NoError(t, err)

		var wg sync.WaitGroup
		results := make([]models.TrnLookupResult, 4)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = r.Lookup(context.Background(), models.TrnLookupCriteria{NINumber: "AB123456C"})
			}()
		}
		require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		for _, res := range results {
			assert.Equal(t, models.TrnLookupStatusFound, res.Status)
		}
	})

	t.Run("cancelled caller does not fail a shared lookup", func(t *testing.T) {
		var calls atomic.Int32
		release := make(chan struct{})
		r, err := New(finderFunc(func(ctx context.Context, _ models.TrnLookupCriteria) ([]models.TrnCandidate, error) {
			calls.Add(1)
			select {
			case <-release:
				return candidates("1234567"), nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}))
		require.NoError(t, err)
		criteria := models.TrnLookupCriteria{NINumber: "AB123456C"}

		firstCtx, cancelFirst := context.WithCancel(context.Background())
		defer cancelFirst()
		first := make(chan models.TrnLookupResult, 1)
		go func() { first <- r.Lookup(firstCtx, criteria) }()
		require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

		second := make(chan models.TrnLookupResult, 1)
		go func() { second <- r.Lookup(context.Background(), criteria) }()
		time.Sleep(20 * time.Millisecond)

		cancelFirst()
		assert.Equal(t, models.TrnLookupStatusNone, (<-first).Status, "cancelled caller resolves without candidates")

		close(release)
		res := <-second
		assert.Equal(t, models.TrnLookupStatusFound, res.Status)
		assert.Equal(t, "1234567", res.Trn)
		assert.Equal(t, int32(1), calls.Load())
	})
}
