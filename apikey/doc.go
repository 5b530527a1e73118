// Package apikey stores the API keys accepted by the Api-Key middleware.
//
// RedisStore is the production store; MemoryStore serves tests and single
// instance deployments that configure their keys statically.
package apikey
