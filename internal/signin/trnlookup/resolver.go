// Package trnlookup resolves what a user has told us into a TRN lookup outcome.
//
// The resolver never fails: a matcher timeout or error is logged, counted and
// treated as zero candidates, so the journey always records an outcome.
package trnlookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"teacherid/internal/signin/metrics"
	"teacherid/internal/signin/models"
	"teacherid/internal/signin/trnlookup/dqt"
)

// DefaultTimeout bounds each matcher call.
const DefaultTimeout = 5 * time.Second

const tracerName = "teacherid/internal/signin/trnlookup"

// CandidateFinder queries the external teacher records matcher.
type CandidateFinder interface {
	FindCandidates(ctx context.Context, criteria models.TrnLookupCriteria) ([]models.TrnCandidate, error)
}

// Resolver applies the resolution policy to matcher results.
type Resolver struct {
	finder  CandidateFinder
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	timeout time.Duration
	group   singleflight.Group
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(r *Resolver) {
		r.tracer = tracer
	}
}

func New(finder CandidateFinder, opts ...Option) (*Resolver, error) {
	if finder == nil {
		return nil, errors.New("candidate finder is required")
	}
	r := &Resolver{
		finder:  finder,
		logger:  slog.Default(),
		tracer:  otel.Tracer(tracerName),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Lookup normalizes criteria, queries the matcher and resolves the outcome.
// Identical concurrent lookups share one matcher call. The shared call is
// detached from the caller that started it, so one caller going away does not
// fail the others; a caller whose own ctx ends first resolves with no
// candidates.
func (r *Resolver) Lookup(ctx context.Context, criteria models.TrnLookupCriteria) models.TrnLookupResult {
	criteria = Normalize(criteria)

	ctx, span := r.tracer.Start(ctx, "trnlookup.Lookup", trace.WithAttributes(
		attribute.Bool("trnlookup.has_nino", criteria.NINumber != ""),
		attribute.Bool("trnlookup.has_stated_trn", criteria.Trn != ""),
		attribute.Bool("trnlookup.has_itt_provider", criteria.IttProviderName != ""),
	))
	defer span.End()

	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(criteriaKey(criteria), func() (any, error) {
		return r.find(shared, criteria), nil
	})

	var candidates []models.TrnCandidate
	select {
	case res := <-ch:
		candidates, _ = res.Val.([]models.TrnCandidate)
		span.SetAttributes(attribute.Bool("trnlookup.shared", res.Shared))
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		span.SetStatus(codes.Error, "caller gave up waiting")
		r.logger.WarnContext(ctx, "trn lookup abandoned by caller", "error", ctx.Err())
	}

	result := Resolve(criteria, candidates)
	span.SetAttributes(
		attribute.String("trnlookup.status", string(result.Status)),
		attribute.Int("trnlookup.candidates", result.Candidates),
	)
	r.metrics.IncrementLookupOutcome(string(result.Status))
	return result
}

func (r *Resolver) find(ctx context.Context, criteria models.TrnLookupCriteria) []models.TrnCandidate {
	ctx, span := r.tracer.Start(ctx, "trnlookup.FindCandidates")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	candidates, err := r.finder.FindCandidates(ctx, criteria)
	r.metrics.ObserveLookupLatency(time.Since(start))
	if err == nil {
		return candidates
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "matcher call failed")
	if dqt.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		r.logger.WarnContext(ctx, "trn lookup timed out, treating as no match",
			"timeout", r.timeout.String(),
			"error", err,
		)
		r.metrics.IncrementLookupTimeout()
		return nil
	}
	category := dqt.Category(err)
	r.logger.ErrorContext(ctx, "trn lookup failed, treating as no match",
		"category", string(category),
		"error", err,
	)
	r.metrics.IncrementLookupError(string(category))
	return nil
}

// Resolve applies the resolution policy:
//
//   - one candidate is a match
//   - several candidates are ambiguous and left for manual resolution
//   - no candidates with a stated TRN or a QTS claim is still pending, since
//     the claim cannot be discarded
//   - otherwise there is no match
func Resolve(criteria models.TrnLookupCriteria, candidates []models.TrnCandidate) models.TrnLookupResult {
	res := models.TrnLookupResult{Candidates: len(candidates)}
	switch {
	case len(candidates) == 1:
		res.Status = models.TrnLookupStatusFound
		res.Trn = candidates[0].Trn
	case len(candidates) > 1:
		res.Status = models.TrnLookupStatusPending
	case criteria.Trn != "" || (criteria.AwardedQts != nil && *criteria.AwardedQts):
		res.Status = models.TrnLookupStatusPending
	default:
		res.Status = models.TrnLookupStatusNone
	}
	return res
}

// Normalize strips the NI number to upper-case alphanumerics and the stated
// TRN to digits.
func Normalize(c models.TrnLookupCriteria) models.TrnLookupCriteria {
	c.NINumber = NormalizeNINumber(c.NINumber)
	c.Trn = NormalizeTrn(c.Trn)
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.MiddleName = strings.TrimSpace(c.MiddleName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.PreferredName = strings.TrimSpace(c.PreferredName)
	c.EmailAddress = strings.TrimSpace(c.EmailAddress)
	c.IttProviderName = strings.TrimSpace(c.IttProviderName)
	return c
}

func NormalizeNINumber(s string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToUpper(r)
		}
		return -1
	}, s)
}

func NormalizeTrn(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func criteriaKey(c models.TrnLookupCriteria) string {
	dob := ""
	if c.DateOfBirth != nil {
		dob = c.DateOfBirth.Format(time.DateOnly)
	}
	qts := ""
	if c.AwardedQts != nil {
		qts = fmt.Sprint(*c.AwardedQts)
	}
	return strings.Join([]string{
		strings.ToLower(c.FirstName), strings.ToLower(c.MiddleName), strings.ToLower(c.LastName),
		strings.ToLower(c.PreferredName), dob, strings.ToLower(c.EmailAddress),
		strings.ToLower(c.IttProviderName), c.NINumber, c.Trn, qts,
	}, "\x00")
}
