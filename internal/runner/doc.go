// Package runner drives the question loop between a Model and the expense
// tools.
//
// Invariant:
//   - every assistant turn with calls is followed, in call order, by exactly
//     one tool_result turn per call before the next model call.
//
// Flow:
//
//	user(text) -> assistant(calls) -> tool_result... -> assistant(text)
//
// A question ends with the model's text, a fallback after the step budget
// is spent, or a fallback when the model call itself fails.
package runner
