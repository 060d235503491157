package kindle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// api is the request path shared by the client and its books: it attaches
// session headers, sends through the transport and validates the response.
type api struct {
	transport Transport
	session   *Session
	logger    Logger
}

func (a *api) get(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	resp, err := a.transport.Request(ctx, newGetRequest(rawURL, headers))
	if err != nil {
		a.logger.Log("GET %s -> error: %v", logPath(rawURL), err)
		return nil, err
	}
	a.logger.Log("GET %s -> %d", logPath(rawURL), resp.Status)

	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func logPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}

// Page is one page of the library listing.
type Page struct {
	Books           []*Book
	SessionID       string
	PaginationToken *string
}

type libraryResponse struct {
	ItemsList       []BookData `json:"itemsList"`
	PaginationToken *string    `json:"paginationToken"`
}

// fetchPage requests one page of the listing. It reads the session id the
// response sets but leaves the Session untouched.
func fetchPage(ctx context.Context, a *api, pageURL, version string) (*Page, error) {
	resp, err := a.get(ctx, pageURL, a.session.Headers())
	if err != nil {
		return nil, err
	}

	sessionID := resp.Cookies["session-id"]

	var body libraryResponse
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		return nil, fmt.Errorf("failed to parse library response: %w", err)
	}

	books := make([]*Book, 0, len(body.ItemsList))
	for _, data := range body.ItemsList {
		books = append(books, newBook(data, a, sessionID, version))
	}

	return &Page{
		Books:           books,
		SessionID:       sessionID,
		PaginationToken: body.PaginationToken,
	}, nil
}
