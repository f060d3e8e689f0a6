package events

// Topic constants for domain events emitted by the platform.
const (
	TopicEventCreated  = "event.created"
	TopicEventDeleted  = "event.deleted"
	TopicOffersExpired = "offers.expired"
)

// CatalogPayload is carried by catalog-affecting events.
type CatalogPayload struct {
	EventID string `json:"eventId,omitempty"`
	Slug    string `json:"slug,omitempty"`
	Count   int64  `json:"count,omitempty"`
}

// CatalogTopics returns the topics that change what shoppers see.
func CatalogTopics() []string {
	return []string{TopicEventCreated, TopicEventDeleted, TopicOffersExpired}
}
