package events

// Topic constants for domain events emitted by the platform.
const (
	TopicCartUpdated     = "cart.updated"
	TopicCartCleared     = "cart.cleared"
	TopicDeliveryQuoted  = "delivery.quoted"
	TopicSettingsUpdated = "settings.updated"
	TopicSaleCompleted   = "sale.completed"
)

// DefaultTopics returns the canonical list of emitted topics.
func DefaultTopics() []string {
	return []string{
		TopicCartUpdated,
		TopicCartCleared,
		TopicDeliveryQuoted,
		TopicSettingsUpdated,
		TopicSaleCompleted,
	}
}
