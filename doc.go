/*
Package intake is a conversational intake agent: it walks a chat user through
a fixed list of questions, validates every answer, lets the user go back and
correct, and commits the confirmed record to an operator notification and an
append-only ledger.

# Concept

The dialogue is a deterministic state machine. A session is either idle,
collecting the answer of one field, or confirming the summary. Given the
current session and one inbound message, the engine computes the next session
and the reply to render; the Agent persists the session and performs the side
effects (sending the catalog, submitting the record).

Transports (Telegram, HTTP, WebSocket, console, MCP) only convert their own
events into domain.Message values and render domain.Reply values back. Sinks
(notifiers, ledgers) are ports, so the same agent can write to Google Sheets,
SQLite, a Redis stream or memory.

# Usage

	agent, err := intake.New(
		intake.WithPipeline(submission.New(notifier, operatorChatID, ledger)),
	)
	if err != nil {
		log.Fatal(err)
	}

	reply, err := agent.Handle(ctx, domain.Message{
		SessionKey: "42",
		Text:       "start",
		Sender:     domain.Sender{DisplayName: "Ann", ID: "42"},
	})

Messages from the same user must not be handled out of order. Transports that
receive concurrently should go through a dispatch.Dispatcher, which keeps one
FIFO mailbox per session key.
*/
package intake
