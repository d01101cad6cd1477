// Package queue persists the run's job list in SQLite and hands jobs to
// workers one at a time. ClaimNext performs the select-and-flip inside a
// single transaction, which is what makes the shared queue safe to drain from
// many workers at once.
package queue
