// Package manager owns the model session: it validates the downloaded asset,
// initializes the inference backend and serves generate calls once ready.
// It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: Phase, InitConfig, SamplingParams, Session, results.
//   - errors.go: error types and helpers (IsNotInitialized, IsEmptyPrompt, ...).
//   - initialize.go: the validate/initialize state machine.
//   - generate.go: inference entry point with timing metadata.
//   - dispose.go: session teardown.
//   - status_report.go: Snapshot/Status reporting helpers.
//   - sanity.go: read-only preflight checks for the asset and backend.
//   - events.go, eventpub_memory.go: lifecycle event publishing.
//
// Backends:
//
//   - mock: simulated latency and canned tutor replies (adapter_mock.go).
//
//   - In-process llama: uses the go-llama.cpp adapter. Enabled with `-tags=llama`.
//     Files: adapter_llama.go, llama_cgo.go (linker rpath hints).
//     A no-CGO stub exists when the tag is not set: adapter_llama_stub.go.
//
// A Manager holds at most one session. It is safe for concurrent use; generate
// calls are admitted one at a time.
package manager
