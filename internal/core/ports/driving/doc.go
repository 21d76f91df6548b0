// Package driving defines the interfaces through which the CLI and
// other entry points use the core services.
package driving
