package transform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kbukum/reqkit/request"
)

// ContentTypeJSON is the content type set by JSONRequest.
const ContentTypeJSON = "application/json;charset=utf-8"

const headerContentType = "Content-Type"

// JSONRequest encodes maps, slices, structs and scalars as JSON and sets
// Content-Type when it is not already set. Strings, byte slices, readers
// and upload files pass through unchanged.
func JSONRequest(data any, headers request.Header) (any, error) {
	switch data.(type) {
	case nil, string, []byte, io.Reader, *request.UploadFile:
		return data, nil
	}
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding json body: %w", err)
	}
	if headers != nil && headers.Get(headerContentType) == "" {
		headers.Set(headerContentType, ContentTypeJSON)
	}
	return body, nil
}

// JSONResponse decodes string and byte slice bodies into Go values when
// the response declares a JSON content type or the body looks like a JSON
// object or array. A body declared as JSON that fails to decode is an
// error; an undeclared one is returned unchanged.
func JSONResponse(data any, headers request.Header) (any, error) {
	var raw []byte
	switch v := data.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return data, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return data, nil
	}
	declared := isJSONContentType(headers.Get(headerContentType))
	if !declared && !looksLikeJSON(trimmed) {
		return data, nil
	}

	var out any
	if err := json.Unmarshal(trimmed, &out); err != nil {
		if declared {
			return nil, fmt.Errorf("decoding json body: %w", err)
		}
		return data, nil
	}
	return out, nil
}

// WithJSON appends JSONRequest to cfg's request transformers and puts
// JSONResponse first among its response transformers. It returns cfg.
func WithJSON(cfg *request.Config) *request.Config {
	cfg.TransformRequest = append(cfg.TransformRequest, JSONRequest)
	cfg.TransformResponse = append([]request.Transformer{JSONResponse}, cfg.TransformResponse...)
	return cfg
}

func isJSONContentType(ct string) bool {
	ct = strings.ToLower(ct)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}

func looksLikeJSON(b []byte) bool {
	return b[0] == '{' || b[0] == '['
}
