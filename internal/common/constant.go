// Package common contains shared constants and sentinel errors used across
// credkeeper components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// RetryAfterHeaderName is the trailer key carrying the remaining lockout
// time in whole seconds.
const RetryAfterHeaderName = "retry-after"
