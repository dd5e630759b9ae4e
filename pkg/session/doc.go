/*
Package session runs wizard conversations.

A Session owns one visitor's answer store and current step. Visitor actions are
validated by the step controller and followed by a deliberate pacing delay before
the next prompt is revealed; the delay is a scheduled callback that re-checks the
session generation and the step it was scheduled for, so closing or reopening a
session invalidates every timer still in flight.

The Manager hosts many sessions, serialising access per session ID (optionally
across replicas through a distributed locker) and restoring sessions from a
SessionStore when they are not in memory.
*/
package session
