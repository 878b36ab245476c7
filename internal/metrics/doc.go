// Package metrics exposes runtime memory readings and the Prometheus
// collectors of the evaluation service.
package metrics
