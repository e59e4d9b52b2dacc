// Package mail is the outbound-email boundary. Sending is asynchronous
// and best-effort: the request that triggers a mail completes without
// waiting for delivery, and failures are logged, never surfaced to the
// caller.
package mail

import (
	"context"
	"log"
	"time"

	"github.com/capitolcinema/booking-backend/internal/queue"
)

// Mailer dispatches one email to a recipient.
type Mailer interface {
	Send(toName, toAddress, subject, htmlBody string)
}

// QueueMailer publishes mails to the broker's mail.outbound queue in a
// background goroutine.
type QueueMailer struct{}

func NewQueueMailer() *QueueMailer { return &QueueMailer{} }

func (m *QueueMailer) Send(toName, toAddress, subject, htmlBody string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := queue.Publish(ctx, queue.MailQueue, queue.MailMessage{
			ToName:    toName,
			ToAddress: toAddress,
			Subject:   subject,
			HTMLBody:  htmlBody,
		})
		if err != nil {
			log.Printf("mail: dispatch to %s failed: %v", toAddress, err)
		}
	}()
}
