// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. Concurrency is bounded with an ants
// worker pool per run and an errgroup across documents.
package services
