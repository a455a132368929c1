// Package cli provides the interactive back office shell and the one-shot
// commands built around it.
//
// It wires configuration, the local session database, the REST client,
// list controllers and the notification poller, then runs a REPL in which
// every screen of the admin panel is a route: open it, page through it,
// search it, inspect or change its records.
//
// Key features:
//   - Login / Logout with a session that survives restarts
//   - Role-checked navigation with history (open, back)
//   - Paginated, searchable lists of every admin resource
//   - Create, edit, delete, approve and reject with toast feedback
//   - Background notification polling with a terminal bell
//   - xlsx export of the current page and spare-part import
//
// The REPL is started via App.Shell(ctx), which blocks until the user exits.
// See runREPL for the command loop.
package cli
