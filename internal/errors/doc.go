// Package apperrors holds the error types shared by the CLI and the HTTP
// service and maps them to process exit statuses.
//
// Engine failures keep their *mp.Error in the chain, so mp.CodeOf recovers
// the result code from any wrapper.
package apperrors
