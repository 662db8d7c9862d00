// Package services defines the error taxonomy shared by the pipeline
// components and their external service clients.
//
// Errors carry one of the exported sentinel markers so the orchestrator can
// classify a failure without inspecting message text: run-fatal markers abort
// the whole batch, per-movie markers are recorded and recovered. Use Wrap when
// returning errors from component code so classification stays uniform.
package services
