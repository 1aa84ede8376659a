// Package valuation looks up a reference value for a property so offer
// prices can be compared against something. The lookup is best-effort:
// a miss is "no comparison available", never an error the caller must act on.
package valuation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

// Estimator resolves a reference valuation for an address.
// A nil result with nil error means no comparison is available.
type Estimator interface {
	Estimate(ctx context.Context, address, postalCode string) (*float64, error)
}

// HTTPEstimator calls an external valuation API:
// GET {BaseURL}/estimate?address=...&postal_code=... -> {"estimate": 3100000}
type HTTPEstimator struct {
	BaseURL string
	Client  *http.Client
}

func (e *HTTPEstimator) Estimate(ctx context.Context, address, postalCode string) (*float64, error) {
	if e.BaseURL == "" {
		return nil, nil
	}
	q := url.Values{}
	q.Set("address", address)
	q.Set("postal_code", postalCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.BaseURL+"/estimate?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if e.Client == nil {
		e.Client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}
	var out struct {
		Estimate *float64 `json:"estimate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Estimate, nil
}
