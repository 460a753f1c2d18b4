// Package client talks to the credkeeper gRPC endpoint.
//
// GRPCClient keeps the access token returned by a successful Verify and
// attaches it to later calls through a unary interceptor. gRPC statuses are
// mapped onto the sentinel errors in errors.go (match with errors.Is) and,
// for lockouts, onto *LockedError, which carries the server's retry delay.
package client
