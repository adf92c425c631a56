// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger writing console output to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Every stage of the update pipeline accepts a context and extracts the
// logger from it, enabling scoped, structured logging throughout the
// codebase. Failures in this tool are counted or returned, never logged
// fatally; process exit belongs to the CLI shim.
package logger
