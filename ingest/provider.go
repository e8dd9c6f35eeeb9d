package ingest

import (
	"context"

	"github.com/sig-0/fxwatch/storage/types"
)

// Provider is a single quotation source
type Provider interface {
	// Name returns the human-readable name of the provider
	Name() string

	// Fetch is the provider's main fetch job, yielding a single validated observation
	Fetch(context.Context) (*types.Observation, error)
}
