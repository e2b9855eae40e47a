// Package api exposes the notebook over HTTP: review submission, the due
// queue, interval previews, statistics, familiarity marking and lookup.
// Handlers decode and validate requests, call the review service and map
// its errors to status codes and safe messages.
package api
