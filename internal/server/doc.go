// Package server exposes the engine over HTTP.
//
// Endpoints:
//
//	POST /v1/eval   evaluate one operation (JSON or MessagePack body)
//	GET  /v1/ops    list the available operations
//	GET  /health    liveness with a system resource sample
//	GET  /metrics   Prometheus metrics
//
// The request and response encoding follows the Content-Type of the request:
// "application/msgpack" (or "application/x-msgpack") selects MessagePack,
// anything else JSON.
package server
