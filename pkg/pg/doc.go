// Package pg provides PostgreSQL connection pooling, health checks and
// schema migrations for the engine's persistent stores (the usage ledger and
// the purchase-history mirror).
//
// Connections go through pgxpool with retry and exponential backoff so
// instances restarting together do not stampede the database. Migrations run
// through goose against the SQL files in migrations/.
package pg
