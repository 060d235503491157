package kindle

import (
	"context"
	"fmt"
)

type paginationState int

const (
	stateFetching paginationState = iota
	stateContinuing
	stateDone
)

func (s paginationState) String() string {
	switch s {
	case stateFetching:
		return "fetching"
	case stateContinuing:
		return "continuing"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// pageResult is everything a pagination run accumulated.
type pageResult struct {
	Books     []*Book
	SessionID string
	Pages     int
}

// paginate pages through the listing selected by override (merged over the
// defaults). It stops after the first page unless FetchAllPages is set, and
// otherwise when Amazon stops returning a pagination token. Any error ends
// the run and drops what was accumulated.
func paginate(ctx context.Context, a *api, base, version string, override *QueryOptions) (*pageResult, error) {
	query := mergeQuery(override)
	result := &pageResult{Books: []*Book{}}

	state := stateFetching
	for state != stateDone {
		switch state {
		case stateFetching:
			pageURL, err := BuildURL(base, query)
			if err != nil {
				return nil, err
			}

			page, err := fetchPage(ctx, a, pageURL, version)
			if err != nil {
				return nil, err
			}

			result.Pages++
			result.Books = append(result.Books, page.Books...)
			result.SessionID = page.SessionID
			query.PaginationToken = page.PaginationToken
			state = stateContinuing

		case stateContinuing:
			switch {
			case query.PaginationToken == nil:
				state = stateDone
			case !query.FetchAllPages:
				state = stateDone
			default:
				a.logger.Log("Fetching page %d (token %s)", result.Pages+1, *query.PaginationToken)
				state = stateFetching
			}

		default:
			return nil, fmt.Errorf("invalid pagination state %s", state)
		}
	}

	return result, nil
}
