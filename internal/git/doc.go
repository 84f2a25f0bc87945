// Package git provides the repository engine behind a gitpanel session.
//
// It wraps go-git and, where go-git has no equivalent, the git CLI to offer:
//   - Repository probing, initialization and opening
//   - Branch management (list, create, delete, checkout, merge)
//   - Commit creation and log rendering
//
// Every opened repository is a Handle that holds an exclusive advisory lock on
// the repository until Destroy is called.
//
// This package should be the only place where git is touched directly.
package git
