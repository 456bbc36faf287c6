// Package task maps a requested execution mode onto a pre-built workflow
// graph, drives a run to completion and extracts the final typed result from
// the event stream.
package task
