// Package telegram connects the agent to the Telegram Bot API: a long-polling
// transport for users and a Notifier for the operator chat.
package telegram
