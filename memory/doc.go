// Package memory holds per-session conversation state.
//
// A Session is owned by its caller and lives only in process memory. Its
// Conversation is append-only: turns are never edited or removed, and
// readers always receive copies.
//
// Turn shapes:
//
//	user(text) -> assistant(calls) -> tool_result(call id)... -> assistant(text)
package memory
