// Package cli provides the interactive policy-log command-line client.
//
// App puts a REPL in front of a services.SessionService and a
// services.LogService. While a session exists the log collection is
// refreshed in the background, and the prompt shows whether the last
// remote call reached the server (online) or not (offline).
//
// Commands:
//   - register / login / logout / whoami
//   - list, refresh, more: the resident collection and its pagination
//   - show, new, comment: single log operations
//   - search, mine, tags: server-side queries
//   - doc: download the policy document of a log
//
// Run blocks until the user exits or stdin is closed.
package cli
