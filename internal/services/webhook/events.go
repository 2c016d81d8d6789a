package webhook

import "kudi/internal/models"

type action int

const (
	actionNone action = iota
	actionComplete
	actionFail
)

// eventActions maps each provider's event types onto a state machine step.
// Event types missing here are recorded and ignored.
var eventActions = map[string]map[string]action{
	models.ProviderPaystack: {
		"charge.success": actionComplete,
		"charge.failed":  actionFail,
	},
	models.ProviderMomo: {
		"payment.success": actionComplete,
		"payment.failed":  actionFail,
	},
	models.ProviderStripe: {
		"payment_intent.succeeded":      actionComplete,
		"payment_intent.payment_failed": actionFail,
	},
}

func actionFor(provider, eventType string) action {
	return eventActions[provider][eventType]
}

// KnownProvider reports whether events from provider are accepted.
func KnownProvider(provider string) bool {
	_, ok := eventActions[provider]
	return ok
}
