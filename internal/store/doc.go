// Package store persists game state and battle logs.
//
// Three backends implement engine.GameStateRepo and BattleLog:
//   - Store: SQLite (default), one file per save
//   - PGStore: PostgreSQL through a pgx pool
//   - MemoryState: in-memory, for tests and dry runs
//
// Game state is five key/value tables of integers: switches, variables,
// timestamps (unix seconds), currencies and inventory. Keys arrive already
// namespaced by the engine; a missing key reads as zero.
//
// The battle log is append-only. Each resolved step writes its results
// under (battle_id, seq), where seq is the battle's logical clock, and
// ordinal keeps the order within the step.
//
// # Deterministic Query Results
//
//   - All result queries order by seq ASC, ordinal ASC
//   - Payloads are RFC 8785 canonical JSON, so equal results store equal bytes
//
// # Database Configuration
//
//   - Schema is managed by goose from embedded migrations, one set per dialect
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
