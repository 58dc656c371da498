// Package reporting forwards unexpected server errors and panics to Rollbar
// and carries the active Reporter through context.Context.
package reporting
