// Package errors provides the error type shared by the razd engine.
//
// Every fatal failure that reaches the CLI is an *Error tagged with a Kind:
//
//   - KindParse: a Razdfile.yml or mise.toml could not be decoded
//   - KindValidation: a tool name, plugin name or plugin URL is malformed
//   - KindIO: a read, write or rename failed
//   - KindConfig: the project or engine configuration is unusable
//
// Callers match kinds with the standard library:
//
//	if errors.Is(err, rerrors.ErrValidation) {
//	    // show the offending entry and the example
//	}
//
// An unresolved conflict is not an error; the sync engine reports it as a
// result value.
package errors
