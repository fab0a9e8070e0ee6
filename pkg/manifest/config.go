package manifest

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Config is the top-level manifest.
type Config struct {
	Backend Backend `toml:"backend"`
	Session Session `toml:"session"`
	Proxy   Proxy   `toml:"proxy"`
	Server  Server  `toml:"server"`
	Routes  []Route `toml:"route"`
}

type Backend struct {
	URL       string `toml:"url"`
	TimeoutMS int    `toml:"timeout_ms"`
}

type Session struct {
	AccessCookie         string   `toml:"access_cookie"`
	RefreshCookie        string   `toml:"refresh_cookie"`
	AccessMaxAgeSeconds  int      `toml:"access_max_age_seconds"`
	RefreshMaxAgeSeconds int      `toml:"refresh_max_age_seconds"`
	VerifyTTLSeconds     int      `toml:"verify_ttl_seconds"`
	ProfileTTLSeconds    int      `toml:"profile_ttl_seconds"`
	SweepIntervalSeconds int      `toml:"sweep_interval_seconds"`
	LoginPath            string   `toml:"login_path"`
	AfterLoginPath       string   `toml:"after_login_path"`
	AfterLogoutPath      string   `toml:"after_logout_path"`
	TrustForwardedProto  bool     `toml:"trust_forwarded_proto"`
	PublicPaths          []string `toml:"public_paths"`
}

type Proxy struct {
	Prefix                  string `toml:"prefix"`
	StreamBodies            *bool  `toml:"stream_bodies"`
	BufferLimitBytes        int64  `toml:"buffer_limit_bytes"`
	MultipartMemoryBytes    int64  `toml:"multipart_memory_bytes"`
	FollowRedirects         *bool  `toml:"follow_redirects"`
	ResponseHeaderTimeoutMS int    `toml:"response_header_timeout_ms"`
}

type Server struct {
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
	TrustForwardedFor  bool     `toml:"trust_forwarded_for"`
}

func (p Proxy) Streaming() bool { return p.StreamBodies == nil || *p.StreamBodies }
func (p Proxy) Follow() bool    { return p.FollowRedirects == nil || *p.FollowRedirects }

var defaultPublicPaths = []string{"/", "/login", "/register", "/login-oauth", "/oauth-google"}

func (c *Config) applyDefaults() {
	if c.Backend.TimeoutMS == 0 {
		c.Backend.TimeoutMS = 8000
	}
	s := &c.Session
	if s.AccessCookie == "" {
		s.AccessCookie = "accessToken"
	}
	if s.RefreshCookie == "" {
		s.RefreshCookie = "refreshToken"
	}
	if s.AccessMaxAgeSeconds == 0 {
		s.AccessMaxAgeSeconds = 3600
	}
	if s.RefreshMaxAgeSeconds == 0 {
		s.RefreshMaxAgeSeconds = 7 * 24 * 3600
	}
	if s.VerifyTTLSeconds == 0 {
		s.VerifyTTLSeconds = 15 * 60
	}
	if s.ProfileTTLSeconds == 0 {
		s.ProfileTTLSeconds = 6 * 3600
	}
	if s.SweepIntervalSeconds == 0 {
		s.SweepIntervalSeconds = 600
	}
	if s.LoginPath == "" {
		s.LoginPath = "/login"
	}
	if s.AfterLoginPath == "" {
		s.AfterLoginPath = "/"
	}
	if s.AfterLogoutPath == "" {
		s.AfterLogoutPath = "/"
	}
	if s.PublicPaths == nil {
		s.PublicPaths = append([]string(nil), defaultPublicPaths...)
	}
	p := &c.Proxy
	if p.Prefix == "" {
		p.Prefix = "/api"
	}
	if p.BufferLimitBytes == 0 {
		p.BufferLimitBytes = 10 << 20
	}
	if p.MultipartMemoryBytes == 0 {
		p.MultipartMemoryBytes = 32 << 20
	}
	if p.ResponseHeaderTimeoutMS == 0 {
		p.ResponseHeaderTimeoutMS = 10000
	}
}

// Validate fills defaults and checks every section.
func (c *Config) Validate() error {
	c.applyDefaults()

	if err := checkURL(c.Backend.URL); err != nil {
		return fmt.Errorf("backend.url: %w", err)
	}
	if c.Backend.TimeoutMS < 0 {
		return errors.New("backend.timeout_ms must be >= 0")
	}

	s := c.Session
	for name, v := range map[string]int{
		"access_max_age_seconds":  s.AccessMaxAgeSeconds,
		"refresh_max_age_seconds": s.RefreshMaxAgeSeconds,
		"verify_ttl_seconds":      s.VerifyTTLSeconds,
		"profile_ttl_seconds":     s.ProfileTTLSeconds,
		"sweep_interval_seconds":  s.SweepIntervalSeconds,
	} {
		if v < 0 {
			return fmt.Errorf("session.%s must be >= 0", name)
		}
	}
	for name, p := range map[string]string{
		"login_path":        s.LoginPath,
		"after_login_path":  s.AfterLoginPath,
		"after_logout_path": s.AfterLogoutPath,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("session.%s must start with /", name)
		}
	}
	for _, p := range s.PublicPaths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("session.public_paths: %q must start with /", p)
		}
	}
	if s.AccessCookie == s.RefreshCookie {
		return errors.New("session access and refresh cookies must differ")
	}

	if !strings.HasPrefix(c.Proxy.Prefix, "/") {
		return errors.New("proxy.prefix must start with /")
	}
	if c.Proxy.BufferLimitBytes < 0 || c.Proxy.MultipartMemoryBytes < 0 || c.Proxy.ResponseHeaderTimeoutMS < 0 {
		return errors.New("proxy limits must be >= 0")
	}

	if len(c.Routes) == 0 {
		return errors.New("no routes defined")
	}
	return c.validateRoutes()
}

func checkURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host required")
	}
	return nil
}
