package request

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/kbukum/reqkit/util"
)

var (
	// :name or {name}
	pathParamRE = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)|\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	absoluteRE  = regexp.MustCompile(`^(?i)[a-z][a-z0-9+.\-]*://`)
)

// ResolveURL builds the final request URL from cfg: path parameters are
// filled from Params then Data, BaseURL is joined unless the URL is
// absolute, and the remaining Params are appended as the query string.
// Params consumed by the path are not repeated in the query. Placeholders
// with no value are left as they are. cfg is not modified.
func ResolveURL(cfg *Config) string {
	remaining := make(map[string]any, len(cfg.Params))
	for k, v := range cfg.Params {
		remaining[k] = v
	}
	data, _ := cfg.Data.(map[string]any)

	path := pathParamRE.ReplaceAllStringFunc(cfg.URL, func(match string) string {
		name := strings.Trim(match, ":{}")
		if v, ok := cfg.Params[name]; ok && v != nil {
			delete(remaining, name)
			return url.PathEscape(formatValue(v))
		}
		if v, ok := data[name]; ok && v != nil {
			return url.PathEscape(formatValue(v))
		}
		return match
	})

	full := joinURL(cfg.BaseURL, path)

	var qs string
	if cfg.ParamsSerializer != nil {
		qs = cfg.ParamsSerializer(remaining)
	} else {
		qs = EncodeParams(remaining)
	}
	return appendQuery(full, qs)
}

// IsAbsoluteURL reports whether u starts with a scheme.
func IsAbsoluteURL(u string) bool {
	return absoluteRE.MatchString(u)
}

func joinURL(base, path string) string {
	if base == "" || IsAbsoluteURL(path) {
		return path
	}
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// appendQuery adds qs to u, keeping any #fragment at the end.
func appendQuery(u, qs string) string {
	if qs == "" {
		return u
	}
	u, fragment, hasFragment := strings.Cut(u, "#")
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	u += sep + qs
	if hasFragment {
		u += "#" + fragment
	}
	return u
}

// EncodeParams encodes params as a sorted query string. Nil values are
// skipped, slices and arrays of any element type repeat their key, nested
// maps use key[sub] names and times are formatted as RFC 3339.
func EncodeParams(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	values := url.Values{}
	for k, v := range params {
		addValue(values, k, v)
	}
	return values.Encode()
}

func addValue(values url.Values, key string, v any) {
	switch val := v.(type) {
	case nil:
	case []string:
		for _, item := range val {
			values.Add(key, item)
		}
	case []byte:
		values.Add(key, string(val))
	case map[string]any:
		for _, k := range util.SortedKeys(val) {
			addValue(values, key+"["+k+"]", val[k])
		}
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				addValue(values, key, rv.Index(i).Interface())
			}
			return
		}
		values.Add(key, formatValue(val))
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// ParamsFrom converts a struct tagged with `url:"..."` into query params.
//
//	type ListOptions struct {
//	    Page int    `url:"page,omitempty"`
//	    Sort string `url:"sort,omitempty"`
//	}
//	params, err := request.ParamsFrom(ListOptions{Page: 2})
func ParamsFrom(v any) (map[string]any, error) {
	values, err := query.Values(v)
	if err != nil {
		return nil, fmt.Errorf("encoding params: %w", err)
	}
	params := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			params[k] = vs[0]
			continue
		}
		params[k] = vs
	}
	return params, nil
}
