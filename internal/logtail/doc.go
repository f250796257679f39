// Package logtail reads the tail of walkin's own log file for the logs page
// and the `walkin logs` command.
//
// # Reading
//
// Read extracts the last N lines with a ring buffer in a single pass, so the
// memory used is proportional to N rather than the file size. A missing file
// yields no lines and no error; the log is created lazily on first write.
//
//	lines, err := logtail.Read(cfg.LogPath(), 400)
//
// # Parsing
//
// walkin writes zerolog JSON lines:
//
//	{"level":"warn","service":"walkin","request_id":"…","action":"updateStatus","time":"2026-10-16T09:15:00-05:00","message":"api request failed"}
//
// Parse turns each line into an Entry with time, level, message and the
// remaining keys as sorted Fields. Anything that is not a JSON object is kept
// as an unstructured entry so hand edits or panics in the file still show up.
//
// AtLeast filters parsed entries by minimum level.
package logtail
