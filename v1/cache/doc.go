// Package cache provides an in-process key-value cache where every entry
// carries its own time-to-live. Expiration is lazy: reads never remove
// entries, and stale entries stay in storage until Expire, ExpireAll or
// Clear reclaims them. The core Cache is single-owner; SyncCache and
// ShardedCache wrap it for concurrent use.
package cache
