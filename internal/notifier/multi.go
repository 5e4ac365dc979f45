package notifier

import (
	"context"

	"go.uber.org/multierr"

	"github.com/amishk599/jobsignal/internal/model"
)

// Ensure Multi implements model.Notifier.
var _ model.Notifier = Multi(nil)

// Multi fans a summary out to every notifier, in order. All notifiers run
// even when an earlier one fails; the failures are combined.
type Multi []model.Notifier

func (m Multi) Notify(ctx context.Context, s model.BatchSummary) error {
	var err error
	for _, n := range m {
		err = multierr.Append(err, n.Notify(ctx, s))
	}
	return err
}
