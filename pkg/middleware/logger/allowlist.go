package logger

import (
	"net/http"
	"strings"
	"sync"
)

const maxLoggedBody = 1 << 16 // 64 KiB

var (
	bodyLogMu    sync.RWMutex
	bodyLogPaths = map[string]struct{}{}
)

// AddBodyLogPaths lets callers opt paths into request body logging. Session
// routes carry passwords and are never worth adding.
func AddBodyLogPaths(paths ...string) {
	bodyLogMu.Lock()
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p != "" {
			bodyLogPaths[p] = struct{}{}
		}
	}
	bodyLogMu.Unlock()
}

// wantsBody decides before the body is read, so streamed uploads are never
// buffered here: only small JSON bodies of known length on allowlisted paths.
func wantsBody(r *http.Request) bool {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		return false
	}
	if r.ContentLength <= 0 || r.ContentLength > maxLoggedBody {
		return false
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return false
	}
	bodyLogMu.RLock()
	_, ok := bodyLogPaths[r.URL.Path]
	bodyLogMu.RUnlock()
	return ok
}
