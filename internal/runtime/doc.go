// Package runtime holds the wizard core: the per-branch transition table (Flow), the step
// Controller, the pure presentation resolver (Resolve) and the message composer (Compose).
// Nothing here schedules timers or performs I/O; the session package drives it.
package runtime
