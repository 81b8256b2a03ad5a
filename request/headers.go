package request

import "github.com/kbukum/reqkit/util"

// FlattenHeaders combines the header declarations of cfg into one Header.
// Precedence, lowest first: CommonHeaders, MethodHeaders for cfg.Method,
// Headers. Keys are canonicalized so later layers override earlier ones
// regardless of case. MethodHeaders keys match case-insensitively; when
// several match, they apply in sorted order and the uppercase key applies
// last. cfg is not modified.
func FlattenHeaders(cfg *Config) Header {
	out := Header{}
	out.merge(cfg.CommonHeaders)
	method := cfg.Method.Upper()
	for _, m := range util.SortedKeys(cfg.MethodHeaders) {
		if m != method && m.Upper() == method {
			out.merge(cfg.MethodHeaders[m])
		}
	}
	out.merge(cfg.MethodHeaders[method])
	out.merge(cfg.Headers)
	return out
}
