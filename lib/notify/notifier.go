package notify

import (
	"context"
	"errors"
	"inzetbooster/lib/mailer"
	"inzetbooster/lib/roster"
	"inzetbooster/lib/telemetry"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("notify")

type AuditLog interface {
	WasNotified(ctx context.Context, shiftID int, contentID, email string) (bool, error)
	RecordNotification(ctx context.Context, shiftID int, contentID, email, messageID string) error
}

type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) (string, error)
}

type Renderer interface {
	Render(id string, shift roster.Shift) (Rendered, error)
}

type Summary struct {
	Sent            int
	Uncovered       int
	AlreadyNotified int
	MissingTemplate int
}

func (s Summary) Skipped() int {
	return s.Uncovered + s.AlreadyNotified + s.MissingTemplate
}

type Notifier struct {
	auditLog  AuditLog
	mailer    Mailer
	templates Renderer
	logger    *slog.Logger
}

func NewNotifier(auditLog AuditLog, mailer Mailer, templates Renderer, logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return Notifier{
		auditLog:  auditLog,
		mailer:    mailer,
		templates: templates,
		logger:    logger,
	}
}

type outcome int

const (
	outcomeSent outcome = iota
	outcomeUncovered
	outcomeAlreadyNotified
	outcomeMissingTemplate
)

// NotifyShifts mails the assigned user of every shift once per template,
// in the order given. A missing template only skips that shift, any
// audit log or mail failure stops the batch.
func (n Notifier) NotifyShifts(ctx context.Context, shifts []roster.Shift) (Summary, error) {
	ctx, span := tracer.Start(ctx, "notify:NotifyShifts")
	defer span.End()

	var summary Summary
	for _, shift := range shifts {
		result, err := n.notifyShift(ctx, shift)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to notify shift")
			return summary, err
		}
		switch result {
		case outcomeSent:
			summary.Sent++
		case outcomeUncovered:
			summary.Uncovered++
		case outcomeAlreadyNotified:
			summary.AlreadyNotified++
		case outcomeMissingTemplate:
			summary.MissingTemplate++
		}
	}

	span.SetAttributes(
		attribute.Int("sent", summary.Sent),
		attribute.Int("skipped", summary.Skipped()),
	)
	n.logger.InfoContext(
		ctx, "shift notifications done",
		"sent", summary.Sent,
		"uncovered", summary.Uncovered,
		"already_notified", summary.AlreadyNotified,
		"missing_template", summary.MissingTemplate,
	)
	return summary, nil
}

func (n Notifier) notifyShift(ctx context.Context, shift roster.Shift) (outcome, error) {
	if !shift.IsCovered() {
		return outcomeUncovered, nil
	}

	templateID := TemplateID(shift.GroupID)
	logger := n.logger.With("shift_id", shift.ID, "template", templateID)

	notified, err := n.auditLog.WasNotified(ctx, shift.ID, templateID, shift.UserEmail)
	if err != nil {
		return 0, err
	}
	if notified {
		logger.DebugContext(ctx, "already notified", "email", shift.UserEmail)
		return outcomeAlreadyNotified, nil
	}

	rendered, err := n.templates.Render(templateID, shift)
	if errors.Is(err, ErrTemplateNotFound) {
		logger.ErrorContext(ctx, "no template for shift group", "group", shift.GroupName)
		return outcomeMissingTemplate, nil
	}
	if err != nil {
		return 0, err
	}

	messageID, err := n.mailer.Send(ctx, mailer.Message{
		ToAddress: shift.UserEmail,
		ToName:    shift.UserName,
		Subject:   rendered.Subject,
		HTML:      rendered.HTML,
	})
	if err != nil {
		return 0, err
	}
	err = n.auditLog.RecordNotification(ctx, shift.ID, templateID, shift.UserEmail, messageID)
	if err != nil {
		return 0, err
	}

	logger.InfoContext(ctx, "notified", "email", shift.UserEmail, "message_id", messageID)
	return outcomeSent, nil
}
