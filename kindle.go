// Package kindle is a client for the library API behind the Kindle web
// reader. It signs in with cookies copied from a browser, registers a web
// reader device and lists the library, sending every request through a
// transport that presents a browser TLS fingerprint.
package kindle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
)

const (
	readBaseURL = "https://read.amazon.com"

	// BooksURL is the library search endpoint. Its query is rewritten per
	// request from QueryOptions.
	BooksURL = readBaseURL + "/kindle-library/search?query=&libraryType=BOOKS&sortType=recency&querySize=50"

	// DeviceTokenURL registers the web reader device and returns the adp
	// session token.
	DeviceTokenURL = readBaseURL + "/service/web/register/getDeviceToken"
)

// DeviceInfo is the device registration result.
type DeviceInfo struct {
	ClientHashID       string `json:"clientHashId" yaml:"clientHashId"`
	DeviceName         string `json:"deviceName" yaml:"deviceName"`
	DeviceSessionToken string `json:"deviceSessionToken" yaml:"deviceSessionToken"`
	EID                string `json:"eid" yaml:"eid"`
}

// Kindle is an authenticated library client. Build one with FromConfig.
type Kindle struct {
	api        *api
	version    string
	deviceInfo DeviceInfo

	mu           sync.Mutex
	defaultBooks []*Book
	defaultTaken bool
}

// FromConfig validates cfg, then runs the bootstrap sequence: one default
// listing request to obtain the library session id, followed by the device
// token exchange. It returns only a fully authenticated client; any failure
// aborts the whole sequence.
func FromConfig(ctx context.Context, cfg Config) (*Kindle, error) {
	cookies, err := cfg.resolveCookies()
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := withClientID(cfg.Logger)
	transport, err := cfg.newTransport(cookies, logger)
	if err != nil {
		return nil, err
	}

	k := &Kindle{
		api: &api{
			transport: transport,
			session:   newSession(cookies, cfg.userAgent()),
			logger:    logger,
		},
		version: cfg.ClientVersion,
	}

	if init, ok := transport.(SessionInitializer); ok {
		if err := k.bootstrapWith(ctx, init, cfg.DeviceToken); err != nil {
			return nil, err
		}
		return k, nil
	}

	if err := k.bootstrap(ctx, cfg.DeviceToken); err != nil {
		return nil, err
	}
	return k, nil
}

func (k *Kindle) bootstrap(ctx context.Context, deviceToken string) error {
	k.api.logger.Log("Fetching default library page...")
	result, err := paginate(ctx, k.api, BooksURL, k.version, nil)
	if err != nil {
		k.api.logger.Log("Default library page failed: %v", err)
		return err
	}
	k.api.session.SetSessionID(result.SessionID)
	k.defaultBooks = result.Books

	k.api.logger.Log("Registering device...")
	info, err := k.DeviceToken(ctx, deviceToken)
	if err != nil {
		k.api.logger.Log("Device registration failed: %v", err)
		return err
	}
	k.api.session.SetADPSessionToken(info.DeviceSessionToken)
	k.deviceInfo = *info

	k.api.logger.Log("Session ready (%d default books)", len(k.defaultBooks))
	return nil
}

func (k *Kindle) bootstrapWith(ctx context.Context, init SessionInitializer, deviceToken string) error {
	k.api.logger.Log("Initializing session through transport...")
	initial, err := init.InitializeSession(ctx, deviceToken, k.api.session.Headers())
	if err != nil {
		k.api.logger.Log("Session initialization failed: %v", err)
		return err
	}

	k.api.session.SetSessionID(initial.SessionID)
	k.api.session.SetADPSessionToken(initial.DeviceInfo.DeviceSessionToken)
	k.deviceInfo = initial.DeviceInfo

	k.defaultBooks = make([]*Book, 0, len(initial.Books))
	for _, data := range initial.Books {
		k.defaultBooks = append(k.defaultBooks, newBook(data, k.api, initial.SessionID, k.version))
	}
	return nil
}

// DeviceToken exchanges the web reader device token for device info
// including the adp session token. It does not modify the session.
func (k *Kindle) DeviceToken(ctx context.Context, token string) (*DeviceInfo, error) {
	params := url.Values{
		"serialNumber": {token},
		"deviceType":   {token},
	}
	resp, err := k.api.get(ctx, DeviceTokenURL+"?"+params.Encode(), k.api.session.Headers())
	if err != nil {
		return nil, err
	}

	var info DeviceInfo
	if err := json.Unmarshal([]byte(resp.Body), &info); err != nil {
		return nil, fmt.Errorf("failed to parse device info: %w", err)
	}
	return &info, nil
}

// Books lists the library. A nil query selects the default listing. The
// first default listing after bootstrap is served from the page fetched
// during bootstrap; every other call goes to Amazon and refreshes the
// session id.
func (k *Kindle) Books(ctx context.Context, query *QueryOptions) ([]*Book, error) {
	if books, ok := k.takeDefaultBooks(query); ok {
		return books, nil
	}

	result, err := paginate(ctx, k.api, BooksURL, k.version, query)
	if err != nil {
		return nil, err
	}
	k.api.session.SetSessionID(result.SessionID)
	return result.Books, nil
}

func (k *Kindle) takeDefaultBooks(query *QueryOptions) ([]*Book, bool) {
	if !mergeQuery(query).isDefault() {
		return nil, false
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.defaultTaken {
		return nil, false
	}
	k.defaultTaken = true
	return k.defaultBooksLocked(), true
}

// DefaultBooks returns the listing fetched during bootstrap.
func (k *Kindle) DefaultBooks() []*Book {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.defaultBooksLocked()
}

func (k *Kindle) defaultBooksLocked() []*Book {
	books := make([]*Book, len(k.defaultBooks))
	copy(books, k.defaultBooks)
	return books
}

// DeviceInfo returns the device registration made during bootstrap.
func (k *Kindle) DeviceInfo() DeviceInfo {
	return k.deviceInfo
}

// SessionID returns the current library session id.
func (k *Kindle) SessionID() string {
	return k.api.session.SessionID()
}

// Session exposes the client's session state.
func (k *Kindle) Session() *Session {
	return k.api.session
}
