// Package clinic provides the client for the clinic intake web service.
//
// # Overview
//
// The intake backend is a spreadsheet exposed as a web app with a single GET
// endpoint. Every operation is selected by an `action` query parameter and
// takes scalar query parameters. Responses are JSON objects with a boolean
// `success` field; failures carry an `error` string.
//
// # Files
//
//   - client.go: Client, Call and the typed wrappers (login, fetches, writes)
//   - errors.go: Error and Kind, the uniform failure result
//   - status.go: the Status enum and its canonical sheet strings
//   - types.go: PatientVisit and the history, search and analytics payloads
//   - decode.go: normalization of header-keyed sheet rows into typed values
//
// # Error Handling
//
// No call panics or leaks a raw transport error. Every failure is a *Error
// whose Kind tells callers what went wrong:
//
//   - KindConfiguration: endpoint unset or the placeholder; nothing was sent
//   - KindTransport: network failure or non-2xx status ("HTTP 500: ...")
//   - KindParse: body was not JSON ("invalid JSON response: ...")
//   - KindApplication: success:false, message taken from the backend
//
// Each call is attempted once. Writes are not idempotent on the backend, so
// the client never retries.
//
// # Normalization
//
// Sheet rows arrive keyed by their column headers ("First Name", "Status",
// "_row", ...). decode.go maps them onto PatientVisit, accepting numbers sent
// as strings and normalizing status spellings. Rows whose status cannot be
// recognized are dropped and logged rather than shown with a guessed status.
package clinic
