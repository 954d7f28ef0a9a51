package scheduler

import (
	"context"
	"fmt"
	"time"

	"angebot_backend/internal/adapters/storage"
	"angebot_backend/internal/email"
	"angebot_backend/internal/events"
	"angebot_backend/internal/quotes/transport"
	"angebot_backend/platform/logger"

	"github.com/google/uuid"
)

// QuoteDelivery is the slice of the quotes service the deliverer needs.
type QuoteDelivery interface {
	Get(ctx context.Context, id uuid.UUID) (*transport.QuoteDetailResponse, error)
	RenderPDF(ctx context.Context, id uuid.UUID) ([]byte, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status transport.QuoteStatus) error
}

// Deliverer performs the full quote delivery: render the proposal PDF,
// archive it, email it, then mark the quote as sent. Used both by the asynq
// worker and by the synchronous fallback when no queue is configured.
type Deliverer struct {
	quotes  QuoteDelivery
	sender  email.Sender
	storage storage.Service
	bucket  string
	bus     events.Bus
	log     *logger.Logger
}

func NewDeliverer(quotes QuoteDelivery, sender email.Sender, store storage.Service, bucket string, bus events.Bus, log *logger.Logger) *Deliverer {
	return &Deliverer{
		quotes:  quotes,
		sender:  sender,
		storage: store,
		bucket:  bucket,
		bus:     bus,
		log:     log,
	}
}

// Deliver runs the delivery for one quote. The status only moves to sent
// after the mail went out; a failure leaves the quote untouched so the job
// can be retried.
func (d *Deliverer) Deliver(ctx context.Context, quoteID uuid.UUID, recipientEmail string) error {
	quote, err := d.quotes.Get(ctx, quoteID)
	if err != nil {
		return fmt.Errorf("load quote %s: %w", quoteID, err)
	}

	pdf, err := d.quotes.RenderPDF(ctx, quoteID)
	if err != nil {
		return fmt.Errorf("render quote %s: %w", quoteID, err)
	}

	fileName := fmt.Sprintf("angebot-%s.pdf", quoteID)

	// Archiving is best effort: a storage outage must not block the mail.
	if d.storage != nil {
		key := fmt.Sprintf("%s/%s-%s", quoteID, time.Now().UTC().Format("20060102T150405Z"), fileName)
		if err := d.storage.Upload(ctx, d.bucket, key, pdf, "application/pdf"); err != nil {
			d.log.Warn("archiving proposal pdf failed", "quoteId", quoteID, "error", err)
		}
	}

	att := email.Attachment{
		FileName: fileName,
		Content:  pdf,
		MIMEType: "application/pdf",
	}
	if err := d.sender.SendQuoteProposalEmail(ctx, recipientEmail, quote.CustomerName, quote.ProjectTitle, att); err != nil {
		return fmt.Errorf("send quote %s: %w", quoteID, err)
	}

	if err := d.quotes.UpdateStatus(ctx, quoteID, transport.QuoteStatusSent); err != nil {
		return fmt.Errorf("mark quote %s sent: %w", quoteID, err)
	}

	if d.bus != nil {
		d.bus.Publish(ctx, events.QuoteDelivered{
			BaseEvent:      events.NewBaseEvent(),
			QuoteID:        quoteID,
			RecipientEmail: recipientEmail,
		})
	}

	d.log.Info("quote delivered", "quoteId", quoteID, "recipient", recipientEmail)
	return nil
}
