package kindle

import (
	"io"

	http "github.com/bogdanfinn/fhttp"
)

// PseudoHeaderOrder is the HTTP/2 pseudo-header order Chrome sends.
var PseudoHeaderOrder = []string{
	":method",
	":authority",
	":scheme",
	":path",
}

// readResponseBody decompresses and reads the full response body.
// Caller should defer resp.Body.Close() before calling this.
func readResponseBody(resp *http.Response) ([]byte, error) {
	body := http.DecompressBody(resp)
	defer body.Close()
	return io.ReadAll(body)
}

// toFHTTPHeader turns a Request's headers into an fhttp header with the
// browser's ordering attached.
func toFHTTPHeader(req *Request) http.Header {
	header := make(http.Header, len(req.Headers)+2)
	for k, v := range req.Headers {
		header[k] = []string{v}
	}
	if len(req.HeaderOrder) > 0 {
		header[http.HeaderOrderKey] = req.HeaderOrder
	}
	header[http.PHeaderOrderKey] = PseudoHeaderOrder
	return header
}

// responseCookies flattens the cookies a response sets into name -> value.
func responseCookies(resp *http.Response) map[string]string {
	cookies := make(map[string]string)
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c.Value
	}
	return cookies
}
