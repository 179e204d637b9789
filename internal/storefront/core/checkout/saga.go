// Package checkout runs a purchase as a saga: the order is created, then
// payment is initiated, and a failure undoes the completed steps in
// reverse order. Every transition is appended to the checkout log.
package checkout

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"
)

var tracer = otel.Tracer("github.com/jcmexdev/tradehub/internal/storefront/core/checkout")

// Step is a single unit of work with its compensating action.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Orchestrator runs steps sequentially. log may be nil.
type Orchestrator struct {
	steps []Step
	log   ports.CheckoutLogRepository
}

func NewOrchestrator(log ports.CheckoutLogRepository, steps ...Step) *Orchestrator {
	return &Orchestrator{steps: steps, log: log}
}

// Start executes the run identified by checkoutID. payload is recorded on
// the STARTED row only. On failure the completed steps are compensated
// LIFO and the failing step's error is returned.
func (o *Orchestrator) Start(ctx context.Context, checkoutID, payload string) error {
	ctx, span := tracer.Start(ctx, "checkout.run")
	defer span.End()
	span.SetAttributes(attribute.String("checkout.id", checkoutID))

	o.record(ctx, newEntry(ctx, checkoutID, entity.CheckoutStarted, "", payload, nil))

	var done []Step
	for _, step := range o.steps {
		slog.InfoContext(ctx, "executing checkout step", "checkout_id", checkoutID, "step", step.Name())

		if err := o.execute(ctx, step); err != nil {
			slog.WarnContext(ctx, "checkout step failed, rolling back",
				"checkout_id", checkoutID, "step", step.Name(), "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "checkout failed")

			errs := []string{fmt.Sprintf("%s failed: %v", step.Name(), err)}
			o.record(ctx, newEntry(ctx, checkoutID, entity.CheckoutCompensating, step.Name(), "", errs))
			errs = append(errs, o.rollback(ctx, checkoutID, done)...)
			o.record(ctx, newEntry(ctx, checkoutID, entity.CheckoutFailed, step.Name(), "", errs))

			return fmt.Errorf("checkout %s: %s: %w", checkoutID, step.Name(), err)
		}

		done = append(done, step)
		o.record(ctx, newEntry(ctx, checkoutID, entity.CheckoutStepDone, step.Name(), "", nil))
	}

	o.record(ctx, newEntry(ctx, checkoutID, entity.CheckoutCompleted, "", "", nil))
	slog.InfoContext(ctx, "checkout completed", "checkout_id", checkoutID)
	return nil
}

func (o *Orchestrator) execute(ctx context.Context, step Step) error {
	ctx, span := tracer.Start(ctx, "checkout.step."+step.Name())
	defer span.End()

	if err := step.Execute(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// rollback compensates in reverse and returns the compensation failures.
func (o *Orchestrator) rollback(ctx context.Context, checkoutID string, steps []Step) []string {
	var failures []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		slog.InfoContext(ctx, "compensating checkout step", "checkout_id", checkoutID, "step", step.Name())
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to compensate checkout step",
				"checkout_id", checkoutID, "step", step.Name(), "error", err)
			failures = append(failures, fmt.Sprintf("compensation of %s failed: %v", step.Name(), err))
		}
	}
	return failures
}

// record never fails the run.
func (o *Orchestrator) record(ctx context.Context, entry *entity.CheckoutLog) {
	if o.log == nil {
		return
	}
	if err := o.log.AppendCheckout(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to append checkout log",
			"checkout_id", entry.CheckoutID, "status", entry.Status, "error", err)
	}
}
