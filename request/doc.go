// Package request dispatches HTTP requests through a pluggable adapter.
//
// The package owns everything between a caller's configuration and the
// transport: it merges per-call configuration over client defaults,
// normalizes it (URL template, query string, header flattening, method
// casing), runs the request and response transformer pipelines, and
// bridges the adapter's callback-style completion into a settle-once
// Promise. The transport itself is an Adapter supplied by the caller.
//
// # Usage
//
//	client := request.New(&request.Config{
//	    Adapter: myAdapter,
//	    BaseURL: "https://api.example.com",
//	})
//	resp, err := client.Get(ctx, "/items/:id", map[string]any{"id": 42}, nil)
//
// A dispatch ends in exactly one of three ways: a *Response, a
// *ResponseError (adapter failure or rejected status), or a *cancel.Cancel.
// Configuration contract violations are returned synchronously and never
// reach the adapter.
package request
