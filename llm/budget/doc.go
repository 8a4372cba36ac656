// Package budget provides persistent sliding-window accounting for
// per-provider, per-model request and token quotas.
//
// # Overview
//
// Every attempted upstream call is recorded as an immutable UsageRecord.
// Manager aggregates two rolling windows relative to the instant of
// the query -- minute = [now-60s, now], day = [now-24h, now] -- and checks
// them against a configured limit table before the Router commits to a
// candidate.
//
// # Core types
//
//   - Manager       -- record/aggregate/check-headroom against a Store.
//   - Store         -- the persistence boundary (Mongo-backed or in-memory).
//   - Limits        -- the provider -> model -> ProviderLimits table.
//
// Storage failures never fail the request path: RecordUsage logs and
// swallows write errors, GetUsageStats returns zeros on aggregation
// failure. Quota accounting is advisory, not a hard gate.
package budget
