package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartMailConsumer connects to RabbitMQ, declares the mail.outbound
// queue and drains it. Each message is appended to logs/mail.log; the
// real SMTP transport subscribes to the same queue in production, this
// consumer keeps a local delivery trail and empties the queue in
// development. Runs a reconnect loop with capped backoff and never
// returns under normal operation.
func StartMailConsumer() {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("mail-consumer: dial failed: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeMail(conn); err != nil {
			log.Printf("mail-consumer: consume loop ended: %v; reconnecting", err)
		}
		_ = conn.Close()
		time.Sleep(2 * time.Second)
	}
}

func consumeMail(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(MailQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	deliveries, err := ch.Consume(MailQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for d := range deliveries {
		var msg MailMessage
		if err := json.Unmarshal(d.Body, &msg); err != nil {
			log.Printf("mail-consumer: bad payload: %v", err)
			_ = d.Reject(false)
			continue
		}
		if err := appendMailLog(msg); err != nil {
			log.Printf("mail-consumer: log write failed: %v", err)
			_ = d.Reject(true)
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

func appendMailLog(msg MailMessage) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join("logs", "mail.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line := fmt.Sprintf("%s to=%q name=%q subject=%q bytes=%d\n",
		time.Now().UTC().Format(time.RFC3339), msg.ToAddress, msg.ToName,
		msg.Subject, len(msg.HTMLBody))
	_, err = f.WriteString(line)
	return err
}
