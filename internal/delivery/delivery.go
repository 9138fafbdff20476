// Package delivery defines the contract every transport entry point
// (HTTP server, workers) fulfills so the composition root can start them
// uniformly.
package delivery

import "context"

// Delivery is a long-running transport entry point.
type Delivery interface {
	// Serve blocks until the delivery stops or fails.
	Serve(ctx context.Context) error
}
