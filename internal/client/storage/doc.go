// Package storage is the client's local persistence layer.
//
// Session state is kept in two tiers. The durable tier (SQLiteTier) survives
// restarts of the client. The ephemeral tier (MemoryTier, or RedisTier when
// configured) holds backups that live only as long as the process or the
// redis TTL. Cache applies the promotion rule between them: when the durable
// tier has no token but the ephemeral tier does, the ephemeral token, expiry
// and user are copied back into the durable tier.
//
// All Tier implementations return (nil, nil) from Get for a missing key.
package storage
