package kindle

import (
	"fmt"
	"net/url"
	"strconv"
)

// Sort orders accepted by the library search endpoint.
const (
	SortAcquisitionDesc = "acquisition_desc"
	SortAcquisitionAsc  = "acquisition_asc"
	SortRecency         = "recency"
	SortTitle           = "title"
	SortAuthor          = "author"
)

const defaultQuerySize = 50

// QueryOptions shapes a library listing. FetchAllPages is handled by the
// client and never sent to Amazon.
type QueryOptions struct {
	SortType        string
	QuerySize       int
	FetchAllPages   bool
	SearchTerm      string
	PaginationToken *string
}

// DefaultQuery is the listing fetched during bootstrap.
func DefaultQuery() QueryOptions {
	return QueryOptions{
		SortType:   SortAcquisitionDesc,
		QuerySize:  defaultQuerySize,
		SearchTerm: "",
	}
}

// mergeQuery lays the non-zero fields of override over the defaults.
func mergeQuery(override *QueryOptions) QueryOptions {
	q := DefaultQuery()
	if override == nil {
		return q
	}
	if override.SortType != "" {
		q.SortType = override.SortType
	}
	if override.QuerySize != 0 {
		q.QuerySize = override.QuerySize
	}
	if override.SearchTerm != "" {
		q.SearchTerm = override.SearchTerm
	}
	if override.PaginationToken != nil {
		token := *override.PaginationToken
		q.PaginationToken = &token
	}
	q.FetchAllPages = override.FetchAllPages
	return q
}

// isDefault reports whether the options select the same listing as DefaultQuery.
func (q QueryOptions) isDefault() bool {
	d := DefaultQuery()
	return q.SortType == d.SortType &&
		q.QuerySize == d.QuerySize &&
		q.SearchTerm == d.SearchTerm &&
		q.PaginationToken == nil &&
		!q.FetchAllPages
}

type queryParam struct {
	key     string
	value   string
	present bool
}

// params lists every wire parameter with its rendered value. FetchAllPages is
// left out; SearchTerm goes out as "query".
func (q QueryOptions) params() []queryParam {
	token := queryParam{key: "paginationToken"}
	if q.PaginationToken != nil {
		token.value, token.present = *q.PaginationToken, true
	}
	return []queryParam{
		{key: "sortType", value: q.SortType, present: true},
		{key: "querySize", value: strconv.Itoa(q.QuerySize), present: true},
		{key: "query", value: q.SearchTerm, present: true},
		token,
	}
}

// BuildURL renders q onto base. Absent parameters are removed from the URL,
// even when base already carries them.
func BuildURL(base string, q QueryOptions) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse base url: %w", err)
	}

	values := u.Query()
	for _, p := range q.params() {
		if p.present {
			values.Set(p.key, p.value)
		} else {
			values.Del(p.key)
		}
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}
