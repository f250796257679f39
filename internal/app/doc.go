// Package app is walkin's composition root.
//
// # Overview
//
// Bootstrap wires configuration, logging, the clinic client, the session
// store and the workflow controller into a Services value shared by the
// dashboard and the CLI commands. Run adds the background poller and hands
// control to the TUI.
//
//	┌──────────────┐
//	│ Bootstrap()  │
//	└──────┬───────┘
//	       ├─────> config.Load()        Read ~/.config/walkin/config.toml
//	       ├─────> logging.Init()       JSON log file (+ console with --verbose)
//	       ├─────> clinic.NewClient()   Endpoint client with request timeout
//	       ├─────> session.Load()       Restore identity into state.Store
//	       └─────> workflow.NewController(client, Services.Refresh)
//
//	Run():
//	       ├─────> StartPoller()        Background refresh while logged in
//	       └─────> ui.Run()             Dashboard (blocks)
//
// # Refreshing
//
// Refresh is the single path that reloads today's visits. The poller, the
// controller after a successful transition and the dashboard's manual
// refresh key all go through it, so the store only ever receives a complete
// list or a recorded failure.
//
// # Polling Behavior
//
// The poller wakes every refresh_interval (default 2 minutes) and fetches
// only while a session is active. After consecutive failures the wait
// doubles per failure up to 30 seconds; intervals already longer than that
// are not stretched further.
//
// # Error Handling
//
// Fatal errors (returned from Bootstrap/Run):
//   - Configuration file invalid
//   - Log directory not writable
//
// An unset endpoint is not fatal. The client is still built and every call
// reports the configuration error, which the login screen displays.
package app
