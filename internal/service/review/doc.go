// Package review orchestrates the scheduler core, the user character store
// and the statistics cache. Writes run inside store.RunInTransaction and are
// followed by a notebook event once committed.
package review
