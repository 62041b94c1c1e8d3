// Package common contains shared constants and sentinel errors used across
// solarauth components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound and outbound requests.
const AccessTokenHeaderName = "access_token"

// AuthorizationHeaderName is the alternative metadata key accepted by the
// server; its value is expected in "Bearer <token>" form.
const AuthorizationHeaderName = "authorization"

// RequestIDHeaderName carries a caller supplied request id used for log
// correlation.
const RequestIDHeaderName = "x-request-id"
