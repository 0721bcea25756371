// Package dqt is a client for the teacher records "find teachers" API.
package dqt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"teacherid/internal/signin/models"
)

const findPath = "/v3/teachers/find"

// Client queries the teacher records matcher.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// New creates a client. A nil httpClient uses http.DefaultClient; callers
// bound each call through the context.
func New(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: httpClient,
	}
}

type findResponse struct {
	Results []teacher `json:"results"`
}

type teacher struct {
	Trn                     string `json:"trn"`
	FirstName               string `json:"firstName"`
	LastName                string `json:"lastName"`
	DateOfBirth             string `json:"dateOfBirth"`
	NationalInsuranceNumber string `json:"nationalInsuranceNumber"`
}

func (t teacher) candidate() (models.TrnCandidate, error) {
	if t.Trn == "" {
		return models.TrnCandidate{}, errors.New("result without trn")
	}
	c := models.TrnCandidate{
		Trn:       t.Trn,
		FirstName: t.FirstName,
		LastName:  t.LastName,
		NINumber:  t.NationalInsuranceNumber,
	}
	if t.DateOfBirth != "" {
		dob, err := time.Parse(time.DateOnly, t.DateOfBirth)
		if err != nil {
			return models.TrnCandidate{}, fmt.Errorf("date of birth: %w", err)
		}
		c.DateOfBirth = &dob
	}
	return c, nil
}

// FindCandidates returns every teacher record matching criteria.
func (c *Client) FindCandidates(ctx context.Context, criteria models.TrnLookupCriteria) ([]models.TrnCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+findPath+"?"+query(criteria).Encode(), nil)
	if err != nil {
		return nil, newMatcherError(ErrorInternal, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, newMatcherError(ErrorTimeout, "request timed out", err)
		}
		return nil, newMatcherError(ErrorOutage, "failed to send request", err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return nil, err
	}

	var body findResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		if isTimeout(ctx, err) {
			return nil, newMatcherError(ErrorTimeout, "reading response timed out", err)
		}
		return nil, newMatcherError(ErrorBadData, "failed to decode response", err)
	}

	candidates := make([]models.TrnCandidate, 0, len(body.Results))
	for _, t := range body.Results {
		cand, err := t.candidate()
		if err != nil {
			return nil, newMatcherError(ErrorBadData, "invalid result", err)
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

func query(c models.TrnLookupCriteria) url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("firstName", c.FirstName)
	set("middleName", c.MiddleName)
	set("lastName", c.LastName)
	set("previousFirstName", c.PreferredName)
	set("emailAddress", c.EmailAddress)
	set("ittProviderName", c.IttProviderName)
	set("nationalInsuranceNumber", c.NINumber)
	set("trn", c.Trn)
	if c.DateOfBirth != nil {
		q.Set("dateOfBirth", c.DateOfBirth.Format(time.DateOnly))
	}
	return q
}

func statusError(resp *http.Response) error {
	var category ErrorCategory
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		category = ErrorAuthentication
	case resp.StatusCode == http.StatusTooManyRequests:
		category = ErrorRateLimited
	case resp.StatusCode == http.StatusGatewayTimeout:
		category = ErrorTimeout
	case resp.StatusCode >= 500:
		category = ErrorOutage
	default:
		category = ErrorInternal
	}
	me := newMatcherError(category, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	me.StatusCode = resp.StatusCode
	return me
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
