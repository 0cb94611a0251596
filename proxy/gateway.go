// Package proxy is the Proxy / Egress Gateway: the sole bridge between
// client code and the blob store. It hides storage credentials, removes
// CORS ambiguity, and gives the platform a single point to later add
// authorization or bandwidth accounting without touching clients.
package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"imageflow/core"
	"imageflow/logging"
)

// Gateway serves GET /api/image-proxy. Exactly one of ?key= or ?url= must
// be supplied; a key is resolved against the configured public base URL,
// while a raw url must already have that base URL as a prefix.
type Gateway struct {
	httpClient    *http.Client
	publicBaseURL string
	logger        *logging.Logger
}

// New builds a Gateway from process configuration.
func New(cfg *core.Config, logger *logging.Logger) *Gateway {
	return &Gateway{
		httpClient:    core.GetDefaultHTTPClient(cfg),
		publicBaseURL: strings.TrimRight(cfg.StoragePublicLink, "/"),
		logger:        logger.Named("proxy"),
	}
}

// ServeHTTP implements §4.5.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	rawURL := r.URL.Query().Get("url")

	if (key == "") == (rawURL == "") {
		writeJSONError(w, http.StatusBadRequest, "exactly one of key or url must be provided")
		return
	}

	var target string
	if key != "" {
		target = g.publicBaseURL + "/" + key
	} else {
		if !strings.HasPrefix(rawURL, g.publicBaseURL) {
			writeJSONError(w, http.StatusForbidden, "url is outside the configured storage origin")
			return
		}
		target = rawURL
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, "failed to build upstream request")
		return
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Warn("upstream fetch failed", zap.String("target", target), zap.Error(err))
		writeJSONError(w, http.StatusBadGateway, "failed to fetch object from storage")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		w.WriteHeader(resp.StatusCode)
		io.Copy(w, io.LimitReader(resp.Body, 4096))
		return
	}

	w.Header().Set("Content-Type", resp.Header.Get("Content-Type"))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	io.Copy(w, resp.Body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
