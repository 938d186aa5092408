// Package webhook receives media server notifications over HTTP and feeds
// them to the deletion pipeline.
//
// Routes:
//   - POST /webhook accepts a JSON object or a form body. Every value is
//     rendered as a string before it reaches the pipeline; JSON booleans become
//     "True" or "False" so item_isvirtual compares the same regardless of
//     encoding.
//   - GET /healthz reports liveness and the enable toggle.
//   - GET /metrics serves Prometheus metrics when a registry is configured.
//
// When a token is configured, /webhook requires it as ?token= or as an
// "Authorization: Bearer" header.
package webhook
