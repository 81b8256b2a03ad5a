// Package cancel provides cooperative cancellation handles for reqkit
// requests.
//
// A Token is shared between the caller and the dispatcher. The dispatcher
// checks it before invoking an adapter and registers a listener that aborts
// the in-flight adapter task when the token fires.
//
// # Usage
//
//	src := cancel.NewSource()
//	cfg := &request.Config{CancelToken: src.Token()}
//	go func() { time.Sleep(time.Second); src.Cancel("user left") }()
//
// Contexts can be bridged with FromContext, and several tokens combined with
// Join.
package cancel
