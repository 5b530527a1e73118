// Package redis wraps go-redis with opkit configuration and logging.
//
// Client exposes the small key/value surface the toolkit needs, JSONStore
// keeps JSON documents under a key prefix, and Component plugs the client
// into the application lifecycle:
//
//	store := redis.NewJSONStore[apikey.Key](client, "apikey")
//	key, err := store.Load(ctx, "4de4...")
package redis
