// Package session implements the repository-session controller.
//
// A Controller owns at most one git.Handle and moves between three phases:
// no repository, active, and destroyed. Every operation is serialized through
// a single gate, and every successful mutation is followed by a fresh query of
// branches, current branch and log so the published State never goes stale.
//
// View state for a UI is derived with Project, which is a pure function of
// State. Dispatcher runs Operations asynchronously in submission order.
package session
