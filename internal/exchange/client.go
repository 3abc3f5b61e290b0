// internal/exchange/client.go
package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"

	stderrors "github.com/deepedumate/student-loan-aggregator-sub001/internal/common/errors"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/httpclient"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
)

// fallbackRatesFromINR are applied when the live rate service is unreachable,
// so loan summaries can still show an approximate converted figure. Values
// are units of the target currency per INR.
var fallbackRatesFromINR = map[string]float64{
	"USD": 0.012,
	"GBP": 0.0095,
	"CAD": 0.016,
	"EUR": 0.011,
	"INR": 1,
}

// Client fetches currency conversion rates, with a static fallback table.
type Client struct {
	baseURL string
	http    *httpclient.Client
	logger  logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpclient.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"client": "exchange"}),
	}
}

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Rate returns how many units of target one unit of base buys. On a live
// fetch failure it falls back to the static table when base is INR, and
// reports the rate unavailable otherwise.
func (c *Client) Rate(ctx context.Context, base, target string) (float64, error) {
	base = strings.ToUpper(base)
	target = strings.ToUpper(target)
	if base == target {
		return 1, nil
	}

	var resp ratesResponse
	err := c.http.GetJSON(ctx, fmt.Sprintf("%s/%s", c.baseURL, base), nil, &resp)
	if err == nil {
		if rate, ok := resp.Rates[target]; ok && rate > 0 {
			return rate, nil
		}
		err = fmt.Errorf("rate response missing %s", target)
	}

	c.logger.Warn("live exchange rate unavailable", map[string]interface{}{
		"base":   base,
		"target": target,
		"error":  err.Error(),
	})

	if base == "INR" {
		if rate, ok := fallbackRatesFromINR[target]; ok {
			return rate, nil
		}
	}
	return 0, stderrors.NewExchangeRateUnavailableError(err)
}

// Convert translates an amount from base into target currency.
func (c *Client) Convert(ctx context.Context, amount float64, base, target string) (float64, error) {
	rate, err := c.Rate(ctx, base, target)
	if err != nil {
		return 0, err
	}
	return amount * rate, nil
}
