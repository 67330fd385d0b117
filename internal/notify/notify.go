// Package notify fans scan results out to downstream channels.
package notify

import (
	"context"
	"errors"

	"github.com/i474232898/pest-advisory/internal/risk"
)

// Notifier delivers the alerts of one scan.
type Notifier interface {
	Notify(ctx context.Context, farmer risk.FarmerRecord, alerts []risk.Alert) error
}

// Multi sends to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, farmer risk.FarmerRecord, alerts []risk.Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, farmer, alerts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
