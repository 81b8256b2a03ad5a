package request

import (
	"net/textproto"
	"strings"

	"github.com/kbukum/reqkit/util"
)

// Method is an HTTP request method in canonical uppercase form.
type Method string

// Supported methods.
const (
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodConnect Method = "CONNECT"
	MethodHead    Method = "HEAD"
	MethodGet     Method = "GET"
	MethodDelete  Method = "DELETE"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
)

// Methods lists every supported method.
var Methods = []Method{
	MethodOptions, MethodTrace, MethodConnect,
	MethodHead, MethodGet, MethodDelete,
	MethodPost, MethodPut,
}

// dataMethods carry a request body; every other method has its body dropped.
var dataMethods = []Method{MethodPost, MethodPut}

// Upper returns m in canonical uppercase form.
func (m Method) Upper() Method {
	return Method(strings.ToUpper(string(m)))
}

// Valid reports whether m, in any case, is a supported method.
func (m Method) Valid() bool {
	up := m.Upper()
	for _, known := range Methods {
		if up == known {
			return true
		}
	}
	return false
}

// CarriesData reports whether requests with method m keep their body.
// Matching is case-insensitive and prefix based.
func (m Method) CarriesData() bool {
	up := string(m.Upper())
	for _, dm := range dataMethods {
		if strings.HasPrefix(up, string(dm)) {
			return true
		}
	}
	return false
}

func methodNames() []string {
	names := make([]string, len(Methods))
	for i, m := range Methods {
		names[i] = string(m)
	}
	return names
}

// Header maps canonical header names to values. Keys are canonicalized on
// Set so lookups are case-insensitive. Header satisfies the OpenTelemetry
// TextMapCarrier interface, which lets trace context be injected directly.
type Header map[string]string

// NewHeader returns a Header holding the entries of m under canonical keys.
// Later keys that canonicalize to the same name win in sorted key order.
func NewHeader(m map[string]string) Header {
	h := make(Header, len(m))
	for _, k := range util.SortedKeys(m) {
		h.Set(k, m[k])
	}
	return h
}

// Get returns the value for key, matched case-insensitively.
func (h Header) Get(key string) string {
	return h[textproto.CanonicalMIMEHeaderKey(key)]
}

// Set stores value under the canonical form of key.
func (h Header) Set(key, value string) {
	h[textproto.CanonicalMIMEHeaderKey(key)] = value
}

// Del removes key, matched case-insensitively.
func (h Header) Del(key string) {
	delete(h, textproto.CanonicalMIMEHeaderKey(key))
}

// Keys returns the header names.
func (h Header) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	return keys
}

// Clone returns a copy of h. A nil Header clones to nil.
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	out := make(Header, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// merge copies src into h under canonical keys, overwriting existing values.
func (h Header) merge(src map[string]string) {
	for k, v := range src {
		h.Set(k, v)
	}
}
