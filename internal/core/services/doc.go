// Package services implements the driving port interfaces.
// Services contain the core logic and orchestrate calls to driven ports
// (adapters). All services share one Pipeline, which owns the locks that
// keep the content store, the manifest store and the vector index coherent.
//
// Services are pure Go with no CGO or external dependencies.
package services
