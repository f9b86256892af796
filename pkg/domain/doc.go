/*
Package domain contains the core domain models of the intake agent.

It defines the entities the dialogue engine works with: the Form (the ordered
list of Field definitions), the per-user Session, the inbound Message and
outbound Reply exchanged with transports, and the Record produced when a user
confirms their answers. The package is kept free of I/O so every other layer
can depend on it.

# Key Entities

  - Form / Field: the static question schema and its acceptance rules.
  - Session: one user's dialogue position (Phase + Step) and answers.
  - Message / Reply: the transport boundary.
  - Record / SubmissionResult: what is delivered to the sinks and how it went.
*/
package domain
