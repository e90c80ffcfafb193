// Package har loads HTTP Archive (HAR) traces and exposes the recorded
// exchanges the replay engine serves from.
//
// A trace is read once at startup and treated as read-only for the process
// lifetime. The only mutation an Entry ever sees is the lazy, one-time
// population of its decoded-body cache, which is guarded so that concurrent
// requests against the same entry decode at most once.
package har
