package dqt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teacherid/internal/signin/models"
)

func TestFindCandidates(t *testing.T) {
	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)

	t.Run("sends criteria and decodes results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, findPath, r.URL.Path)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			q := r.URL.Query()
			assert.Equal(t, "Jo", q.Get("firstName"))
			assert.Equal(t, "1990-05-17", q.Get("dateOfBirth"))
			assert.Equal(t, "AB123456C", q.Get("nationalInsuranceNumber"))
			assert.False(t, q.Has("trn"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"results":[{"trn":"1234567","firstName":"Jo","lastName":"Bloggs","dateOfBirth":"1990-05-17"}]}`))
		}))
		defer srv.Close()

		c := New(srv.URL+"/", "secret", srv.Client())
		got, err := c.FindCandidates(context.Background(), models.TrnLookupCriteria{
			FirstName:   "Jo",
			LastName:    "Bloggs",
			DateOfBirth: &dob,
			NINumber:    "AB123456C",
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "1234567", got[0].Trn)
		require.NotNil(t, got[0].DateOfBirth)
		assert.True(t, dob.Equal(*got[0].DateOfBirth))
	})

	t.Run("empty results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"results":[]}`))
		}))
		defer srv.Close()

		got, err := New(srv.URL, "", srv.Client()).FindCandidates(context.Background(), models.TrnLookupCriteria{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestFindCandidates_ErrorCategories(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   ErrorCategory
	}{
		{"unauthorized", http.StatusUnauthorized, "", ErrorAuthentication},
		{"rate limited", http.StatusTooManyRequests, "", ErrorRateLimited},
		{"outage", http.StatusServiceUnavailable, "", ErrorOutage},
		{"gateway timeout", http.StatusGatewayTimeout, "", ErrorTimeout},
		{"bad request", http.StatusBadRequest, "", ErrorInternal},
		{"malformed body", http.StatusOK, `{"results":`, ErrorBadData},
		{"result without trn", http.StatusOK, `{"results":[{"firstName":"Jo"}]}`, ErrorBadData},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, "", srv.Client()).FindCandidates(context.Background(), models.TrnLookupCriteria{})
			require.Error(t, err)
			assert.Equal(t, tc.want, Category(err))
		})
	}
}

func TestFindCandidates_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(srv.URL, "", srv.Client()).FindCandidates(ctx, models.TrnLookupCriteria{})
	require.Error(t, err)
	assert.True(t, IsTimeout(err))

	var me *MatcherError
	require.ErrorAs(t, err, &me)
	assert.True(t, me.Retryable)
}
