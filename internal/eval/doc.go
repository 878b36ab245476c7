// Package eval exposes the mp engine as a registry of named operations.
//
// A Request carries textual operands and an operation name; Evaluate parses
// the operands, runs the operation and renders the result in the requested
// radix. The command line, the REPL comparison mode and the HTTP service all
// go through this package, so an operation added to the registry becomes
// available everywhere at once.
//
// The context passed to Evaluate is polled inside modular exponentiation, so
// a deadline stops a long exptmod between exponent digits.
package eval
