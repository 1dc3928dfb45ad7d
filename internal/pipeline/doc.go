// Package pipeline orchestrates track finding for one event at a time:
// polar mapping, angular clustering and track splitting.
//
// A Pipeline holds only its fixed configuration, so one instance may serve
// concurrent Predict calls; each call allocates its own buffers.
package pipeline
