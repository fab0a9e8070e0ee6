package core

import (
	"net/http"

	"github.com/joeydtaylor/steeze-session/pkg/codec"
	manifest "github.com/joeydtaylor/steeze-session/pkg/manifest"
)

func writeJSON(w http.ResponseWriter, payload []byte, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if len(payload) > 0 {
		_, _ = w.Write(payload)
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	b, err := codec.JSON.Marshal(map[string]string{"error": msg})
	if err != nil {
		http.Error(w, msg, status)
		return
	}
	writeJSON(w, b, status)
}

func statusIf(s, def int) int {
	if s > 0 {
		return s
	}
	return def
}

func codecFor(rt manifest.Route) codec.Codec {
	if rt.Codec == manifest.CodecJSONStrict {
		return codec.JSONStrict
	}
	return codec.JSON
}
