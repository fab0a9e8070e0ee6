package proxy

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
)

// payload is the outbound body plan. Replayable bodies may be sent twice
// (redirect following); a streamed body can be read once only.
type payload struct {
	data        []byte
	stream      io.Reader
	length      int64
	contentType string
	replayable  bool
	cleanup     func()
}

func (p payload) reader() io.Reader {
	if p.stream != nil {
		return p.stream
	}
	if p.data == nil {
		return nil
	}
	return bytes.NewReader(p.data)
}

func isMultipartForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

func (f *Forwarder) preparePayload(r *http.Request) (payload, error) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return payload{replayable: true}, nil
	}
	if r.Body == nil || r.Body == http.NoBody {
		return payload{data: []byte{}, replayable: true}, nil
	}

	if isMultipartForm(r) {
		if err := r.ParseMultipartForm(f.cfg.MultipartMemory); err != nil {
			return payload{}, fmt.Errorf("parse multipart: %w", err)
		}
		form := r.MultipartForm
		buf, ct, err := encodeMultipart(form)
		if err != nil {
			_ = form.RemoveAll()
			return payload{}, err
		}
		return payload{
			data:        buf.Bytes(),
			contentType: ct,
			replayable:  true,
			cleanup:     func() { _ = form.RemoveAll() },
		}, nil
	}

	fits := r.ContentLength >= 0 && r.ContentLength <= f.cfg.BufferLimit
	if f.cfg.StreamBodies && !fits {
		return payload{stream: r.Body, length: r.ContentLength}, nil
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return payload{}, fmt.Errorf("read body: %w", err)
	}
	return payload{data: b, replayable: true}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeMultipart rebuilds form under a fresh boundary. Field order is by
// name; values and files keep their order within a name.
func encodeMultipart(form *multipart.Form) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, name := range sortedKeys(form.Value) {
		for _, v := range form.Value[name] {
			if err := mw.WriteField(name, v); err != nil {
				return nil, "", fmt.Errorf("write field %q: %w", name, err)
			}
		}
	}

	for _, name := range sortedKeys(form.File) {
		for _, fh := range form.File[name] {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
				quoteEscaper.Replace(name), quoteEscaper.Replace(fh.Filename)))
			ct := fh.Header.Get("Content-Type")
			if ct == "" {
				ct = "application/octet-stream"
			}
			h.Set("Content-Type", ct)

			part, err := mw.CreatePart(h)
			if err != nil {
				return nil, "", fmt.Errorf("create part %q: %w", name, err)
			}
			src, err := fh.Open()
			if err != nil {
				return nil, "", fmt.Errorf("open part %q: %w", name, err)
			}
			_, err = io.Copy(part, src)
			src.Close()
			if err != nil {
				return nil, "", fmt.Errorf("copy part %q: %w", name, err)
			}
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
