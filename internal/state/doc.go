// Package state holds the dashboard session: who is logged in, the last
// fetched visit list, the queue filter and the visible page.
//
// # Overview
//
// The Store is shared by the background poller, the workflow controller's
// refresh and the UI. It replaces ad-hoc mutable globals with a single
// snapshot that only changes through named actions:
//
//	Login          identity set, everything else reset
//	Logout         back to the zero snapshot
//	ReplaceVisits  fetched list swapped in whole, error cleared
//	RecordFailure  list kept, error recorded, failure count bumped
//	SetFilter      queue filter
//	SetPage        visible page
//
// Each action copies the current snapshot, changes the copy and swaps it in
// under the write lock, so readers never observe a half-applied change.
//
// # Snapshots
//
// Snapshot() returns a value with its own copy of the visit list. Callers
// may sort or modify it freely.
//
// The zero Store is ready to use and represents a logged-out session with
// the All filter on the queue page.
//
// # Refresh results after logout
//
// A refresh started before Logout can complete afterwards, possibly after
// someone else has logged in. ReplaceVisits and RecordFailure are ignored
// while nobody is logged in. Login and Logout also bump Generation; callers
// that capture it before fetching use ReplaceVisitsFor and RecordFailureFor,
// which drop a result from an earlier session.
package state
