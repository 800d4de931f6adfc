// Package redis holds the Redis client setup and the lookup list cache.
package redis
