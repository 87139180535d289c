// Package dealcore is the concurrency-and-consistency core for a read-heavy
// storefront: a generic cache-aside client in front of a slower system of
// record, backed by a shared key/value store.
//
// The client defeats cache penetration (lookups for keys absent from the
// source) with short-lived negative markers, and cache breakdown (a stampede
// of callers rebuilding the same hot expired key) with two strategies:
//
//   - GetWithMutex: a blocking read-through. On a miss, one caller wins a
//     TTL-bounded distributed mutex, loads from the source and repopulates
//     the store; contenders retry a bounded number of times before giving up
//     with ErrLockUnavailable.
//   - GetWithLogicalExpire: entries carry an application-level "stale after"
//     timestamp and no physical TTL. Stale reads return immediately and at
//     most one background rebuild per key runs on a bounded worker pool.
//
// Components:
//   - kv.Store: the key/value collaborator (GET/SET/SETNX/INCR plus an
//     atomic compare-and-delete). Redis and in-process implementations ship
//     under kv/redis and kv/memory.
//   - lock.Mutex: a named, TTL-bounded distributed mutex on kv.Store.
//   - idgen.Generator: compact time-sortable 64-bit ids from a shared
//     day-scoped counter.
//   - order.Coordinator: flash-sale admission (one order per user per
//     voucher, never oversell) built on lock, idgen and a relational store.
//   - codec.Codec[V]: (de)serializes V <-> []byte (JSON, msgpack, CBOR,
//     protobuf).
//
// Cache keys:
//
//	<prefix><id>        - entity entry (payload, or empty negative marker)
//	<prefix><id>:mutex  - rebuild mutex for that entry
package dealcore
