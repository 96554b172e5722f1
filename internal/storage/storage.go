package storage

import (
	"context"
	"errors"

	"isafeDashboard/internal/model"
)

// Storage is a sink for snapshot output.
type Storage interface {
	PutEvents(ctx context.Context, records []model.EventRecord) error
	PutAccount(ctx context.Context, snapshot model.AccountSnapshot) error
}

// Multi writes to every sink in order and reports all failures.
type Multi []Storage

func (m Multi) PutEvents(ctx context.Context, records []model.EventRecord) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.PutEvents(ctx, records))
	}
	return errors.Join(errs...)
}

func (m Multi) PutAccount(ctx context.Context, snapshot model.AccountSnapshot) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.PutAccount(ctx, snapshot))
	}
	return errors.Join(errs...)
}
