// Package workers provides abstractions for managing and running
// background workers in the application, such as the engine poll job.
// It defines the Worker interface and a Workers aggregate that starts
// multiple workers in a unified way.
package workers

// Worker is the interface that must be implemented by any background worker.
// It defines a single Run method that starts the worker's execution.
//
// Implementations either block for the duration of their work or spawn
// goroutines internally and return immediately.
type Worker interface {
	Run()
}
