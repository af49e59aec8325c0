// internal/workers/review/send-review-digest/models.go
package sendreviewdigest

import "time"

// Input optionally narrows one digest run. Recipients overrides the
// configured list; Limit caps how many pending products are included.
type Input struct {
	Recipients []string `json:"recipients,omitempty"`
	Limit      int      `json:"limit,omitempty"`
}

// ReviewItem is one pending product as rendered into the digest.
type ReviewItem struct {
	ProductDetailID int64     `json:"productDetailId"`
	ProductName     string    `json:"productName"`
	Brand           string    `json:"brand,omitempty"`
	Reasons         []string  `json:"reasons"`
	QueuedAt        time.Time `json:"queuedAt"`
}

// Output reports the digest send. Sent false with zero items means the
// queue was empty and no email went out.
type Output struct {
	DigestID  string       `json:"digestId,omitempty"`
	ItemCount int          `json:"itemCount"`
	Sent      bool         `json:"sent"`
	MessageID string       `json:"messageId,omitempty"`
	Items     []ReviewItem `json:"items,omitempty"`
}
