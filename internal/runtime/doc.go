// Package runtime provides the execution context for gitpanel commands.
//
// It encapsulates shared dependencies needed by commands and the panel, such
// as the loaded configuration, the logger, the operation journal and the
// session controller for the repository root.
package runtime
