// Package events carries notebook change notifications between components.
//
// The review service emits an event after every committed write to a learner's
// notebook. Handlers registered with the emitter react to those events without
// the service knowing about them; the statistics cache invalidator is one.
package events
