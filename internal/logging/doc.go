// Package logging is the structured logger shared by the CLI, the HTTP
// service, the strategy orchestrator and calibration. Entries go through
// zerolog, as JSON lines for the service and as console lines for the CLI.
package logging
