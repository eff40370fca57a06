// Package coinsdk is a typed Go client for the CoinCraft REST backend.
//
// The client is deliberately stateless: it holds no token of its own and
// instead pulls the current bearer token from an injected TokenSource on
// every authenticated call. Session lifetime, persistence and teardown
// belong to the session manager, which also registers an unauthorized
// handler so a 401 anywhere tears the session down exactly once.
//
// Every failure surfaces as a typed *APIError classified into a small set
// of codes (network, unauthorized, forbidden, not found, business
// rejection, validation, server). Callers branch with the Is* predicates
// rather than inspecting HTTP status codes.
package coinsdk
