// Package proxy forwards gateway traffic to the backend API with the
// session's bearer token attached.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-session/pkg/codec"
	"go.uber.org/zap"
)

type Config struct {
	// BaseURL is the backend API root, e.g. "http://backend:8000/api".
	BaseURL string
	// Prefix is removed from inbound paths before they are appended to BaseURL.
	Prefix string

	StreamBodies    bool
	BufferLimit     int64
	MultipartMemory int64
	FollowRedirects bool

	// ResponseHeaderTimeout bounds the wait for backend headers only, so
	// long downloads are not cut off.
	ResponseHeaderTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Prefix:                "/api",
		StreamBodies:          true,
		BufferLimit:           10 << 20,
		MultipartMemory:       32 << 20,
		FollowRedirects:       true,
		ResponseHeaderTimeout: 10 * time.Second,
	}
}

type Forwarder struct {
	cfg    Config
	base   string
	client *http.Client
	log    *zap.Logger
}

func New(cfg Config, log *zap.Logger) (*Forwarder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	u, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("proxy: invalid backend url %q", cfg.BaseURL)
	}
	d := DefaultConfig()
	if cfg.BufferLimit <= 0 {
		cfg.BufferLimit = d.BufferLimit
	}
	if cfg.MultipartMemory <= 0 {
		cfg.MultipartMemory = d.MultipartMemory
	}
	if cfg.ResponseHeaderTimeout <= 0 {
		cfg.ResponseHeaderTimeout = d.ResponseHeaderTimeout
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = cfg.ResponseHeaderTimeout
	tr.DisableCompression = true

	return &Forwarder{
		cfg:  cfg,
		base: strings.TrimRight(u.String(), "/"),
		client: &http.Client{
			Transport: tr,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log: log,
	}, nil
}

// Derive returns a forwarder that shares f's transport but targets baseURL
// and strips prefix. Empty arguments keep f's values.
func (f *Forwarder) Derive(baseURL, prefix string) (*Forwarder, error) {
	cfg := f.cfg
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if prefix != "" {
		cfg.Prefix = prefix
	}
	n, err := New(cfg, f.log)
	if err != nil {
		return nil, err
	}
	n.client = f.client
	return n, nil
}

// Forward sends r to the backend and relays the answer to w. token, when
// non-empty, becomes the outbound bearer credential.
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, token string) {
	target := f.Target(r.URL)
	log := f.log.With(
		zap.String("requestId", chimd.GetReqID(r.Context())),
		zap.String("method", r.Method),
		zap.String("target", target),
	)

	p, err := f.preparePayload(r)
	if err != nil {
		log.Warn("proxy body rejected", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.cleanup != nil {
		defer p.cleanup()
	}

	hdr := outboundHeaders(r.Header, token)
	if p.contentType != "" {
		hdr.Set("Content-Type", p.contentType)
	}
	if rid := chimd.GetReqID(r.Context()); rid != "" {
		hdr.Set("X-Request-ID", rid)
	}

	res, err := f.send(r.Context(), r.Method, target, hdr, p)
	if err != nil {
		upstreamErrors.Inc()
		log.Error("proxy upstream failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream unavailable")
		return
	}

	if f.follows(r.Method, p) && isRedirect(res.StatusCode) {
		if loc := res.Header.Get("Location"); loc != "" {
			next, err := res.Request.URL.Parse(loc)
			if err != nil {
				log.Warn("proxy redirect location unusable", zap.String("location", loc), zap.Error(err))
			} else {
				drain(res)
				redirectsFollowed.Inc()
				res, err = f.send(r.Context(), r.Method, next.String(), hdr, p)
				if err != nil {
					upstreamErrors.Inc()
					log.Error("proxy redirect failed", zap.String("location", next.String()), zap.Error(err))
					writeError(w, http.StatusBadGateway, "upstream unavailable")
					return
				}
			}
		}
	}
	defer res.Body.Close()

	upstreamResponses.WithLabelValues(strconv.Itoa(res.StatusCode)).Inc()
	copyResponseHeaders(w.Header(), res.Header)
	w.WriteHeader(res.StatusCode)
	if r.Method == http.MethodHead {
		return
	}
	if err := relayBody(w, res.Body, res.ContentLength < 0); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("proxy response copy interrupted", zap.Error(err))
	}
}

func (f *Forwarder) send(ctx context.Context, method, target string, hdr http.Header, p payload) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, p.reader())
	if err != nil {
		return nil, err
	}
	req.Header = hdr.Clone()
	if p.stream != nil {
		req.ContentLength = p.length
	}
	return f.client.Do(req)
}

// follows reports whether a redirect answer is re-issued here. GET and HEAD
// redirects go back to the client, which can follow them itself; other
// methods are replayed only when their body was buffered.
func (f *Forwarder) follows(method string, p payload) bool {
	if !f.cfg.FollowRedirects || !p.replayable {
		return false
	}
	return method != http.MethodGet && method != http.MethodHead
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func drain(res *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
	res.Body.Close()
}

// relayBody copies src to w, flushing after every chunk when flush is set.
func relayBody(w http.ResponseWriter, src io.Reader, flush bool) error {
	if !flush {
		_, err := io.Copy(w, src)
		return err
	}
	rc := http.NewResponseController(w)
	buf := make([]byte, 32<<10)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			_ = rc.Flush()
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	b, _ := codec.JSON.Marshal(map[string]string{"error": msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
