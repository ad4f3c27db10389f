// README: Outbox rows; order events sit here until published to the
// dispatch broker.
package outbox

import "time"

const (
	TopicOrderCreated = "order.created"

	defaultMaxRetries = 8
)

// Message is one pending event. Rows are deleted after a successful
// publish; failed publishes reschedule with exponential backoff until
// MaxRetries is exhausted.
type Message struct {
	ID          int64
	Exchange    string
	RoutingKey  string
	Payload     []byte
	ContentType string
	RetryCount  int
	MaxRetries  int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	NextRetryAt time.Time
}
