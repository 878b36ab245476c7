// Package orchestration runs modular exponentiation through several
// strategies concurrently and checks that their results agree. It decouples
// the execution from presentation via the ProgressReporter and
// ResultPresenter interfaces.
package orchestration
