// internal/catalog/query.go
package catalog

import (
	"net/url"
	"strconv"

	"github.com/deepedumate/student-loan-aggregator-sub001/internal/models"
)

// BuildQuery serializes a page request into the catalog service's query
// string. Filters use the nested-bracket convention filters[<key>]=<value>;
// only keys with set values are included and numeric values are coerced to
// strings. The shape must match the existing backend bit-for-bit.
func BuildQuery(req models.PageRequest) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(req.Page))
	q.Set("size", strconv.Itoa(req.Size))
	if req.SortKey != "" {
		q.Set("sortKey", req.SortKey)
	}
	if req.SortDir != "" {
		q.Set("sortDir", req.SortDir)
	}
	if req.Search != "" {
		q.Set("search", req.Search)
	}

	for _, pair := range req.Filters.Pairs() {
		q.Set("filters["+pair[0]+"]", pair[1])
	}

	return q
}
