// Package store declares the persistence contract for learner notebooks and
// the transaction helper every multi-statement write runs through.
// Implementations live under internal/platform.
package store
