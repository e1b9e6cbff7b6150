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

const authQueueName = "auth.events"

// StartAuthConsumer connects to RabbitMQ, declares the durable auth.events
// queue and consumes it, appending one line per event to logs/auth.log.
// It runs a reconnect loop with backoff and never returns under normal
// operation; malformed messages are rejected without requeue so the
// consumer keeps draining the queue.
func StartAuthConsumer(url string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("auth-consumer: dial failed: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn); err != nil {
			log.Printf("auth-consumer: consume loop ended: %v; reconnecting", err)
		}
		_ = conn.Close()
		time.Sleep(2 * time.Second)
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(authQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(authQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := appendAuditLine(d.Body); err != nil {
			log.Printf("auth-consumer: handle message failed: %v", err)
			_ = d.Reject(false)
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

// appendAuditLine decodes an AuthEvent and appends a single formatted
// line to logs/auth.log, creating the directory on first use.
func appendAuditLine(body []byte) error {
	var ev AuthEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join("logs", "auth.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s user_id=%d email=%s\n", ev.At, ev.Type, ev.UserID, ev.Email)
	_, err = f.WriteString(line)
	return err
}
