// Package queue defines the message payloads exchanged over the broker
// and the publish/consume plumbing around them.
package queue

// MailMessage is an outbound email handed to the mail transport through
// the broker. The backend only enqueues; actual SMTP delivery happens
// downstream.
type MailMessage struct {
	ToName    string `json:"to_name"`
	ToAddress string `json:"to_address"`
	Subject   string `json:"subject"`
	HTMLBody  string `json:"html_body"`
}

// OrderConfirmedEvent is published after an order commits. It carries
// enough context for downstream consumers (notifications, analytics)
// without another database round-trip.
type OrderConfirmedEvent struct {
	OrderID     uint64   `json:"order_id"`
	AccountID   uint64   `json:"account_id"`
	ShowingID   uint64   `json:"showing_id"`
	MovieID     uint64   `json:"movie_id"`
	RoomName    string   `json:"room_name"`
	StartsAt    string   `json:"starts_at"`
	SeatLabels  []string `json:"seats"`
	TotalAmount float64  `json:"total_amount"`
	ConfirmedAt string   `json:"confirmed_at"`
}
