package offline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/2beens/fitnesstracker/pkg"

	log "github.com/sirupsen/logrus"
)

const headerCacheStatus = "X-Cache"

// hop-by-hop headers, never stored nor forwarded
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// credentials of the tracker's clients, never sent to the app origin
var credentialHeaders = []string{
	"Authorization",
	"Cookie",
}

// Response is the outcome of an interception.
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	FromCache bool
}

func cacheableHeader(h http.Header) http.Header {
	c := h.Clone()
	for _, name := range hopHeaders {
		c.Del(name)
	}
	c.Del("Set-Cookie")
	c.Del("Content-Length")
	return c
}

func (m *Manager) countLookup(result string) {
	if m.metricsManager != nil {
		m.metricsManager.CounterCacheLookups.WithLabelValues(result).Inc()
	}
}

// Intercept answers a request cache-first. A hit is returned without touching
// the network. On a miss the app origin is asked, and a copy is stored when
// the answer is a plain 200. Cache failures are logged and bypassed; network
// errors are returned as they are.
func (m *Manager) Intercept(ctx context.Context, req *http.Request) (*Response, error) {
	key := m.resolve(req.URL).String()
	cacheable := req.Method == http.MethodGet

	gen := m.activeGeneration()
	if gen != nil && cacheable {
		cached, found, err := gen.Match(ctx, key)
		switch {
		case err != nil:
			log.Errorf("offline cache [%s]: match [%s]: %s", m.version, key, err)
			m.countLookup("error")
		case found:
			m.countLookup("hit")
			return &Response{
				Status:    cached.Status,
				Header:    cached.Header.Clone(),
				Body:      cached.Body,
				FromCache: true,
			}, nil
		default:
			m.countLookup("miss")
		}
	} else {
		m.countLookup("bypass")
	}

	liveReq, err := http.NewRequestWithContext(ctx, req.Method, key, req.Body)
	if err != nil {
		return nil, fmt.Errorf("build live request: %w", err)
	}
	liveReq.Header = req.Header.Clone()
	for _, name := range hopHeaders {
		liveReq.Header.Del(name)
	}
	for _, name := range credentialHeaders {
		liveReq.Header.Del(name)
	}
	// let the transport negotiate compression, so stored bodies are plain
	liveReq.Header.Del("Accept-Encoding")
	liveReq.ContentLength = req.ContentLength

	liveResp, err := m.httpClient.Do(liveReq)
	if err != nil {
		return nil, err
	}
	defer liveResp.Body.Close()

	body, err := io.ReadAll(liveResp.Body)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Status: liveResp.StatusCode,
		Header: cacheableHeader(liveResp.Header),
		Body:   body,
	}

	if gen != nil && cacheable && liveResp.StatusCode == http.StatusOK {
		toCache := &CachedResponse{
			Status:   resp.Status,
			Header:   resp.Header.Clone(),
			Body:     body,
			StoredAt: m.now().UTC(),
		}
		if err := gen.Put(ctx, key, toCache); err != nil {
			log.Errorf("offline cache [%s]: put [%s]: %s", m.version, key, err)
		}
	}

	return resp, nil
}

// ServeHTTP proxies the app shell through Intercept. A network failure is
// answered with 502.
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp, err := m.Intercept(r.Context(), r)
	if err != nil {
		log.Errorf("offline cache [%s]: live fetch %s: %s", m.version, r.URL.Path, err)
		pkg.WriteResponse(w, pkg.ContentType.Text, "origin unreachable", http.StatusBadGateway)
		return
	}

	for name, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	if resp.FromCache {
		w.Header().Set(headerCacheStatus, "HIT")
	} else {
		w.Header().Set(headerCacheStatus, "MISS")
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(resp.Status)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(resp.Body); err != nil {
		log.Errorf("offline cache [%s]: write response: %s", m.version, err)
	}
}
