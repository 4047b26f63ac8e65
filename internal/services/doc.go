// Package services defines the shared error taxonomy for pipeline components.
//
// Errors are tagged with sentinel markers so the orchestrator and CLI can
// classify a failure (transient, validation, configuration, missing input,
// external tool) without string matching, and decide whether a run continues
// degraded or aborts.
package services
