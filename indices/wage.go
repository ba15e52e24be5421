package indices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/darioabadie/inmo/pricing"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const DefaultLaborCostURL = "https://api.bcra.gob.ar/estadisticas/v3.0/monetarias/40"

// LaborCostClient fetches the labor-cost index from the central bank's
// statistics endpoint. The payload is {"results": [...]} with one
// {"fecha", "valor"} observation per day, newest first. Ordering is a
// payload detail, not a contract: consumers match by date.
type LaborCostClient struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

func NewLaborCostClient(url string, log *logrus.Logger) *LaborCostClient {
	if url == "" {
		url = DefaultLaborCostURL
	}
	if log == nil {
		log = logrus.New()
	}
	return &LaborCostClient{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

type laborCostPayload struct {
	Results []struct {
		Date  string          `json:"fecha"`
		Value decimal.Decimal `json:"valor"`
	} `json:"results"`
}

// Series returns the index observations inside [from, to].
func (c *LaborCostClient) Series(ctx context.Context, from, to time.Time) ([]pricing.IndexPoint, error) {
	url := fmt.Sprintf("%s?desde=%s&hasta=%s", c.url, from.Format("2006-01-02"), to.Format("2006-01-02"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building labor-cost request: %v", pricing.ErrProviderFailure, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: labor-cost request: %v", pricing.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: labor-cost endpoint returned %d", pricing.ErrProviderFailure, resp.StatusCode)
	}

	var payload laborCostPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding labor-cost payload: %v", pricing.ErrProviderFailure, err)
	}
	if len(payload.Results) == 0 {
		return nil, fmt.Errorf("%w: labor-cost series empty for %s..%s",
			pricing.ErrProviderFailure, from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	points := make([]pricing.IndexPoint, 0, len(payload.Results))
	for _, obs := range payload.Results {
		date, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			c.log.WithField("fecha", obs.Date).Warn("skipping labor-cost observation with bad date")
			continue
		}
		points = append(points, pricing.IndexPoint{Date: date, Value: obs.Value})
	}

	c.log.WithFields(logrus.Fields{
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
		"points": len(points),
	}).Debug("labor-cost series fetched")
	return points, nil
}
