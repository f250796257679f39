// Package config loads walkin's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/walkin/config.toml (default)
//  3. If the config file doesn't exist, fall back to built-in defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # TOML Format
//
//	endpoint_url     = "https://script.google.com/macros/s/<deployment>/exec"
//	counselors       = ["Dr. Sarah Johnson", "Maria Santos, LCSW"]
//	statuses         = ["Waiting", "Assigned", "In Session", "Completed", "Cancelled"]
//	analytics_days   = 30
//	refresh_interval = "2m"
//	request_timeout  = "30s"
//	log_dir          = "~/.local/share/walkin"
//	session_path     = "~/.config/walkin/session.toml"
//	theme            = "Dracula"
//
// All fields are optional. Tilde expansion is performed on paths.
//
// # Counselor Roster
//
// The roster always starts with the placeholder "-- Select Counselor --".
// If a configured roster lacks it, Load prepends it. The placeholder is what
// an unchosen picker holds and is never a valid assignment.
//
// # Endpoint
//
// A missing endpoint_url leaves the placeholder value in place. Load does not
// fail on it so the dashboard can still start and explain the problem;
// Validate returns ErrEndpointUnset and the clinic client refuses every call.
package config
