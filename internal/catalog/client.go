// internal/catalog/client.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	stderrors "github.com/deepedumate/student-loan-aggregator-sub001/internal/common/errors"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/httpclient"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/logger"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/common/metrics"
	"github.com/deepedumate/student-loan-aggregator-sub001/internal/models"
)

// Client talks to the remote loan catalog service. The catalog is ground
// truth; nothing is cached beyond the page the caller holds.
type Client struct {
	baseURL string
	http    *httpclient.Client
	logger  logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpclient.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"client": "catalog"}),
	}
}

// FetchPage retrieves one paginated, sorted, filtered page of loan products.
func (c *Client) FetchPage(ctx context.Context, req models.PageRequest) (*models.PageResult, error) {
	endpoint := fmt.Sprintf("%s/loanProduct/pagination?%s", c.baseURL, BuildQuery(req).Encode())

	start := time.Now()
	var result models.PageResult
	err := c.http.GetJSON(ctx, endpoint, nil, &result)
	metrics.CatalogFetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CatalogFetches.WithLabelValues("error").Inc()
		c.logger.Warn("catalog fetch failed", map[string]interface{}{
			"page":  req.Page,
			"error": err.Error(),
		})
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, stderrors.NewCatalogTimeoutError()
		}
		return nil, stderrors.NewCatalogFetchFailedError(err)
	}

	metrics.CatalogFetches.WithLabelValues("ok").Inc()
	return &result, nil
}

// FilterOptions retrieves the discovery payload of available filter domains.
func (c *Client) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	endpoint := c.baseURL + "/loanProduct/filter-options"

	var out models.FilterOptions
	if err := c.http.GetJSON(ctx, endpoint, nil, &out); err != nil {
		return nil, stderrors.NewCatalogFetchFailedError(err)
	}
	return &out, nil
}

// Details retrieves a single loan product by id.
func (c *Client) Details(ctx context.Context, id string) (*models.LoanProduct, error) {
	endpoint := fmt.Sprintf("%s/loanProduct/details/%s", c.baseURL, url.PathEscape(id))

	var out models.LoanProduct
	if err := c.http.GetJSON(ctx, endpoint, nil, &out); err != nil {
		return nil, stderrors.NewCatalogFetchFailedError(err)
	}
	return &out, nil
}

// SubmitInterest records a student's interest in a product. The catalog
// requires an Authorization bearer token for this endpoint.
func (c *Client) SubmitInterest(ctx context.Context, token string, sub models.InterestSubmission) error {
	endpoint := c.baseURL + "/loan-products/interested"
	headers := map[string]string{"Authorization": "Bearer " + token}

	if err := c.http.PostJSON(ctx, endpoint, headers, sub, nil); err != nil {
		return stderrors.NewCatalogFetchFailedError(err)
	}
	return nil
}
