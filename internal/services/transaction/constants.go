package transaction

import (
	"time"

	"kudi/internal/models"
)

const DefaultTimeout = 10 * time.Second

// Operation names used in metrics and logs
const (
	OpCreate   = "transaction_create"
	OpComplete = "transaction_complete"
	OpFail     = "transaction_fail"
)

// rejectionSeparator joins a failure reason onto the description.
const rejectionSeparator = " | Rejection reason: "

// Payment methods accepted on create
var validMethods = map[string]bool{
	"":                    true,
	models.MethodPaystack: true,
	models.MethodMomo:     true,
	models.MethodStripe:   true,
	models.MethodBank:     true,
	models.MethodInternal: true,
}
