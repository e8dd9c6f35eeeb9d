package ingest

import (
	"context"

	"github.com/sig-0/fxwatch/storage/types"
)

type (
	nameDelegate  func() string
	fetchDelegate func(context.Context) (*types.Observation, error)
	runDelegate   func(context.Context) (*Result, error)
)

type mockProvider struct {
	nameFn  nameDelegate
	fetchFn fetchDelegate
}

func (m *mockProvider) Name() string {
	if m.nameFn != nil {
		return m.nameFn()
	}

	return ""
}

func (m *mockProvider) Fetch(ctx context.Context) (*types.Observation, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx)
	}

	return nil, nil
}

type mockRunner struct {
	runFn runDelegate
}

func (m *mockRunner) Run(ctx context.Context) (*Result, error) {
	if m.runFn != nil {
		return m.runFn(ctx)
	}

	return &Result{}, nil
}
