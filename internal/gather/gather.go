// Package gather feeds the bar stores: a CSV ingester that normalizes
// arbitrary source columns onto the canonical bar schema, and an Alpaca
// market-data gatherer for daily bars.
package gather

import "context"

// Gatherer is the interface for all data gathering processes.
type Gatherer interface {
	// Name returns the gatherer identifier.
	Name() string
	// Run executes the gathering process to completion or failure.
	Run(ctx context.Context) error
}
