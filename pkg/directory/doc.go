// Package directory exposes read-only membership and identity lookups from
// the platform's organizational model: which groups belong to a community,
// who is in a group, and what administrative role a caller holds.
//
// Two implementations exist: PostgresService reads the platform database, and
// MemoryService backs tests and standalone deployments. Both are read-only
// from this service's perspective; users, groups, and communities are managed
// elsewhere in the platform.
package directory
