package manifest

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
)

// Route describes a single HTTP route.
type Route struct {
	Path    string   `toml:"path"`
	Method  string   `toml:"method"`
	Guard   Guard    `toml:"guard"`
	Policy  Policy   `toml:"policy"`
	Handler HSpec    `toml:"handler"`
	Codec   string   `toml:"codec"`
	Tags    []string `toml:"tags"`
}

type Guard struct {
	Users       []string `toml:"users"`
	RequireAuth bool     `toml:"require_auth"`
}

type DownstreamAuth struct {
	Type   string `toml:"type"`   // "none" | "session-bearer" | "static-bearer"
	Header string `toml:"header"` // for static-bearer custom header (default: Authorization)
}

type Policy struct {
	TimeoutMS int             `toml:"timeout_ms"`
	RateLimit *RateLimit      `toml:"rate_limit"`
	DownAuth  *DownstreamAuth `toml:"downstream_auth"`
}

type RateLimit struct {
	RPS   float64 `toml:"rps"`
	Burst int     `toml:"burst"`
}

type HSpec struct {
	Type     HandlerType   `toml:"type"`
	Name     string        `toml:"name"`
	Proxy    *ProxySpec    `toml:"proxy"`
	Redirect *RedirectSpec `toml:"redirect"`
}

// ProxySpec overrides the global [proxy] section for one route.
type ProxySpec struct {
	URL    string `toml:"url"`
	Prefix string `toml:"prefix"`
}

type RedirectSpec struct {
	To     string `toml:"to"`
	Status int    `toml:"status"`
}

// normalize path/method/codec
func (r *Route) normalize() error {
	if r.Path == "" {
		return errors.New("path is required")
	}
	if !strings.HasPrefix(r.Path, "/") {
		r.Path = "/" + r.Path
	}
	if r.Path != "/" {
		r.Path = path.Clean(r.Path)
	}
	r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
	if r.Method == "" {
		r.Method = defaultMethod(r.Handler.Type)
	}
	r.Codec = strings.ToLower(strings.TrimSpace(r.Codec))
	if r.Codec == "" {
		r.Codec = CodecJSON
	}
	if r.Handler.Type == HandlerProxy && r.Policy.DownAuth == nil {
		r.Policy.DownAuth = &DownstreamAuth{Type: DownAuthSessionBearer}
	}
	if rd := r.Handler.Redirect; rd != nil && rd.Status == 0 {
		rd.Status = http.StatusFound
	}
	return nil
}

func defaultMethod(t HandlerType) string {
	switch t {
	case HandlerProxy:
		return "*"
	case HandlerLogin, HandlerRegister:
		return http.MethodPost
	default:
		return http.MethodGet
	}
}

// validate fields that are independent of global state.
func (r *Route) validate() error {
	switch r.Handler.Type {
	case HandlerInproc:
		if strings.TrimSpace(r.Handler.Name) == "" {
			return errors.New("handler.name required for inproc")
		}
	case HandlerProxy:
		if ps := r.Handler.Proxy; ps != nil && ps.URL != "" {
			if err := checkURL(ps.URL); err != nil {
				return fmt.Errorf("handler.proxy.url: %w", err)
			}
		}
	case HandlerRedirect:
		rd := r.Handler.Redirect
		if rd == nil || strings.TrimSpace(rd.To) == "" {
			return errors.New("handler.redirect.to required for redirect")
		}
		if rd.Status < 300 || rd.Status > 399 {
			return fmt.Errorf("handler.redirect.status %d is not a redirect", rd.Status)
		}
	case HandlerLogin, HandlerRegister:
		if r.Method != http.MethodPost {
			return fmt.Errorf("%s must be POST", r.Handler.Type)
		}
	case HandlerLogout, HandlerState:
	default:
		return fmt.Errorf("unknown handler type %q", r.Handler.Type)
	}

	switch r.Codec {
	case CodecJSON, CodecJSONStrict:
	default:
		return fmt.Errorf("codec %q invalid", r.Codec)
	}

	if da := r.Policy.DownAuth; da != nil {
		switch da.Type {
		case DownAuthNone, DownAuthSessionBearer, DownAuthStaticBearer:
		default:
			return fmt.Errorf("policy.downstream_auth.type %q invalid", da.Type)
		}
	}

	if r.Policy.TimeoutMS < 0 {
		return errors.New("policy.timeout_ms must be >= 0")
	}
	if rl := r.Policy.RateLimit; rl != nil {
		if rl.RPS <= 0 || rl.Burst < 0 {
			return errors.New("policy.rate_limit.rps must be > 0 and burst >= 0")
		}
	}
	return nil
}
