package entities

import "errors"

// Error taxonomy for event processing. The transport layer keys its routing
// decisions off these sentinels:
//
//   - ErrValidation: permanent, skip and log, never requeue.
//   - ErrStoreThrottled: transient, requeue with delay.
//
// A stale-write rejection is not an error at all; Apply reports it as a
// WriteOutcome.
var (
	ErrValidation     = errors.New("event failed validation")
	ErrStoreThrottled = errors.New("aggregate store throttled")
	ErrNotFound       = errors.New("record not found")
)
