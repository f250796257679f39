// Package ui implements the walkin terminal dashboard with Bubble Tea.
//
// The root Model polls the shared state.Store for snapshots written by the
// background poller and renders one of four pages: the live queue, patient
// search, analytics and walkin's own log tail. A patient history overlay
// opens from the queue or from search results.
//
// Status changes go through the workflow controller. Assign opens a
// counselor picker and cancel opens a reason prompt; the other actions run
// immediately. Only one change is in flight at a time and its outcome is
// reported on the status line for a few seconds.
package ui
