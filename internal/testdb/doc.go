// Package testdb provides helpers for tests that run against a real
// PostgreSQL database. Those tests carry the integration build tag and are
// skipped when no test database URL is configured.
package testdb
