package pump

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mcp-scooter/bridge/internal/guest"
)

// doFetch performs one guest fetch() call with the capability check applied
// (spec §4.2 phase 2): a request to a disallowed host resolves with an
// error object, it never raises out of the guest.
func (w *Worker) doFetch(req guest.FetchRequest) guest.FetchResult {
	u, err := url.Parse(req.URL)
	if err != nil {
		return guest.FetchResult{Err: "invalid url: " + err.Error()}
	}

	if !w.caps().HostAllowed(u.Hostname()) {
		return guest.FetchResult{Err: "capability denied: network access to " + u.Hostname()}
	}

	method := http.MethodGet
	var body io.Reader
	if req.Options != nil {
		if m, ok := req.Options["method"].(string); ok && m != "" {
			method = m
		}
		if b, ok := req.Options["body"].(string); ok {
			body = strings.NewReader(b)
		}
	}

	httpReq, err := http.NewRequest(method, req.URL, body)
	if err != nil {
		return guest.FetchResult{Err: err.Error()}
	}
	if req.Options != nil {
		if headers, ok := req.Options["headers"].(map[string]interface{}); ok {
			for k, v := range headers {
				if s, ok := v.(string); ok {
					httpReq.Header.Set(k, s)
				}
			}
		}
	}

	resp, err := w.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return guest.FetchResult{Err: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return guest.FetchResult{Err: err.Error()}
	}

	return guest.FetchResult{Status: resp.StatusCode, Body: string(data)}
}

// caps reports the capability grant of the guest this worker owns.
func (w *Worker) caps() guest.Capabilities {
	return w.g.Caps
}

