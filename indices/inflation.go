/*
Package indices implements the external index providers the resolver
consumes: the monthly inflation series and the labor-cost index series.

Both clients translate transport and payload problems into errors tagged
with pricing.ErrProviderFailure, so the resolver can degrade the
affected cycle to the neutral factor instead of aborting the batch.
*/
package indices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/darioabadie/inmo/contract"
	"github.com/darioabadie/inmo/pricing"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const DefaultInflationURL = "https://api.argentinadatos.com/v1/finanzas/indices/inflacion"

// InflationClient fetches the monthly inflation percentage series.
// The endpoint returns the full published history as a flat JSON array
// of {"fecha": "2024-01-31", "valor": 20.6} observations.
type InflationClient struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

func NewInflationClient(url string, log *logrus.Logger) *InflationClient {
	if url == "" {
		url = DefaultInflationURL
	}
	if log == nil {
		log = logrus.New()
	}
	return &InflationClient{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

type inflationObservation struct {
	Date  string          `json:"fecha"`
	Value decimal.Decimal `json:"valor"`
}

// MonthlyRates returns the monthly inflation percentage for each month
// inside [from, to] that the series covers. Months the series has not
// published yet are simply absent from the map.
func (c *InflationClient) MonthlyRates(ctx context.Context, from, to contract.Month) (map[contract.Month]decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building inflation request: %v", pricing.ErrProviderFailure, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: inflation request: %v", pricing.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: inflation endpoint returned %d", pricing.ErrProviderFailure, resp.StatusCode)
	}

	var observations []inflationObservation
	if err := json.NewDecoder(resp.Body).Decode(&observations); err != nil {
		return nil, fmt.Errorf("%w: decoding inflation payload: %v", pricing.ErrProviderFailure, err)
	}

	rates := make(map[contract.Month]decimal.Decimal)
	for _, obs := range observations {
		date, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			c.log.WithField("fecha", obs.Date).Warn("skipping inflation observation with bad date")
			continue
		}
		m := contract.MonthOf(date)
		if m.Before(from) || m.After(to) {
			continue
		}
		rates[m] = obs.Value
	}

	c.log.WithFields(logrus.Fields{
		"from":   from.String(),
		"to":     to.String(),
		"months": len(rates),
	}).Debug("inflation series fetched")
	return rates, nil
}
