/*
Package ports defines the driven ports (interfaces) of the intake agent.

These interfaces decouple the dialogue core from concrete infrastructure, so
the same engine can keep sessions in memory, deliver notifications through a
chat bot or a log, and append ledger rows to a spreadsheet, SQLite or Redis.

# Key Interfaces

  - SessionStore: holds in-progress Sessions keyed by transport identity.
  - Notifier: delivers a formatted message to a fixed operator address.
  - Ledger: appends a row to an append-only tabular store.
  - Catalog: resolves the static catalog document.
*/
package ports
