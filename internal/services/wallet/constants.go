package wallet

import "time"

// Operation names used in metrics and logs
const (
	OpGetOrCreate = "get_or_create"
	OpAdjust      = "adjust"
	OpHistory     = "history"
	OpDeactivate  = "deactivate"
)

// Operation results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

const DefaultTimeout = 10 * time.Second
