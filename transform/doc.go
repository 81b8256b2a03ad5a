// Package transform provides ready-made request and response transformers
// and authentication header hooks.
//
// JSON codecs:
//
//	cfg := transform.WithJSON(&request.Config{URL: "/items", Method: request.MethodPost, Data: item})
//
// Authentication is registered as a header hook, which runs on every
// dispatch whatever the method:
//
//	defaults, err := transform.BearerAuth(token).Apply(request.DefaultConfig())
//	client := request.New(defaults)
//
// SignedJWT mints a short-lived HMAC or RSA/ECDSA signed token on every
// dispatch, so a long-lived client never sends an expired token:
//
//	auth := transform.SignedJWT(transform.JWTConfig{
//	    Secret:  secret,
//	    Issuer:  "billing",
//	    Subject: "svc-billing",
//	    TTL:     time.Minute,
//	})
//	defaults, err := auth.Apply(defaults)
//
// Request transformers only run over the body of POST and PUT requests,
// since the body is dropped for every other method before they run.
package transform
