package contact

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DukeRupert/contactform/internal/domain"
	"github.com/DukeRupert/contactform/internal/email"
	"github.com/DukeRupert/contactform/internal/metrics"
)

const opSubmit = "contact.submit"

// OrchestratorConfig holds the dependencies of an Orchestrator.
type OrchestratorConfig struct {
	Sender  email.Sender
	Policy  Policy
	Timeout time.Duration // Per provider call; zero means no timeout
	Logger  *slog.Logger
}

// Orchestrator issues the two outbound emails for a submission and folds
// their outcomes into one result.
type Orchestrator struct {
	sender  email.Sender
	policy  Policy
	timeout time.Duration
	logger  *slog.Logger

	// Outstanding fire-and-forget admin sends (PolicyIndependent)
	wg sync.WaitGroup
}

// NewOrchestrator creates a new submission orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Policy == "" {
		cfg.Policy = PolicySequential
	}
	return &Orchestrator{
		sender:  cfg.Sender,
		policy:  cfg.Policy,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
}

// Policy returns the active send policy.
func (o *Orchestrator) Policy() Policy {
	return o.policy
}

// Ready fails with a config error when cfg is absent. No provider call is
// made in that case.
func (o *Orchestrator) Ready(cfg *DeliveryConfig) error {
	if cfg != nil {
		return nil
	}
	o.logger.Error("submission refused: delivery configuration missing",
		"policy", o.policy,
	)
	metrics.SubmissionFinished(o.policy.String(), metrics.ResultConfigError)
	return domain.Config(opSubmit, "delivery configuration missing")
}

// Submit sends the admin notification and the auto-reply for payload
// according to the active policy. The same field snapshot goes to both
// templates.
func (o *Orchestrator) Submit(ctx context.Context, payload FormPayload, cfg *DeliveryConfig) error {
	if err := o.Ready(cfg); err != nil {
		return err
	}

	// Once issued, sends run to completion or failure. Only the delivery
	// timeout bounds them.
	ctx = context.WithoutCancel(ctx)

	submissionID := uuid.NewString()
	logger := o.logger.With("submission_id", submissionID, "policy", o.policy)
	params := payload.params()

	admin := email.Message{
		Kind:       email.KindAdmin,
		ServiceID:  cfg.ServiceID(),
		TemplateID: cfg.AdminTemplateID(),
		PublicKey:  cfg.PublicKey(),
		Params:     params.Clone(),
	}
	autoReply := email.Message{
		Kind:       email.KindAutoReply,
		ServiceID:  cfg.ServiceID(),
		TemplateID: cfg.AutoReplyTemplateID(),
		PublicKey:  cfg.PublicKey(),
		Params:     params.Clone(),
	}

	var err error
	switch o.policy {
	case PolicyIndependent:
		err = o.submitIndependent(ctx, logger, admin, autoReply)
	default:
		err = o.submitSequential(ctx, logger, admin, autoReply)
	}

	if err != nil {
		metrics.SubmissionFinished(o.policy.String(), metrics.ResultFailed)
		return domain.Delivery(err, opSubmit)
	}

	metrics.SubmissionFinished(o.policy.String(), metrics.ResultSucceeded)
	logger.Info("contact submission delivered")
	return nil
}

func (o *Orchestrator) submitSequential(ctx context.Context, logger *slog.Logger, admin, autoReply email.Message) error {
	if err := o.send(ctx, logger, admin); err != nil {
		logger.Warn("auto-reply skipped after admin notification failure")
		return err
	}
	return o.send(ctx, logger, autoReply)
}

func (o *Orchestrator) submitIndependent(ctx context.Context, logger *slog.Logger, admin, autoReply email.Message) error {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		// Outcome is logged and counted inside send, never returned.
		_ = o.send(ctx, logger, admin)
	}()

	return o.send(ctx, logger, autoReply)
}

// send performs one provider call, recording metrics and logging the raw
// provider detail on failure.
func (o *Orchestrator) send(ctx context.Context, logger *slog.Logger, msg email.Message) error {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	err := o.sender.Send(ctx, msg)
	duration := time.Since(start)

	if err != nil {
		metrics.DeliveryFailed(string(msg.Kind), duration)
		logger.Error("email delivery failed",
			"template", msg.Kind,
			"template_id", msg.TemplateID,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return err
	}

	metrics.DeliverySucceeded(string(msg.Kind), duration)
	logger.Info("email sent",
		"template", msg.Kind,
		"duration_ms", duration.Milliseconds(),
	)
	return nil
}

// Wait blocks until every fire-and-forget admin send has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}
