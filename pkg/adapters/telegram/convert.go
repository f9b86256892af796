package telegram

import (
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aretw0/intake/pkg/domain"
)

// ToMessage converts an update into an inbound message. Updates without a
// text message (edits, callbacks, stickers...) are ignored.
func ToMessage(update tgbotapi.Update) (domain.Message, bool) {
	m := update.Message
	if m == nil || m.Text == "" {
		return domain.Message{}, false
	}

	msg := domain.Message{
		SessionKey: strconv.FormatInt(m.Chat.ID, 10),
		Text:       m.Text,
		Timestamp:  time.Unix(int64(m.Date), 0),
	}
	if u := m.From; u != nil {
		msg.Sender = domain.Sender{
			DisplayName: strings.TrimSpace(u.FirstName + " " + u.LastName),
			Handle:      u.UserName,
			ID:          strconv.FormatInt(u.ID, 10),
		}
		// One session per user, even in group chats.
		msg.SessionKey = msg.Sender.ID
	}
	return msg, true
}

// Keyboard lays out quick replies one button per row, matching how choices
// are presented. An empty list removes any keyboard left on screen.
func Keyboard(labels []string) any {
	if len(labels) == 0 {
		return tgbotapi.NewRemoveKeyboard(true)
	}
	rows := make([][]tgbotapi.KeyboardButton, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

// Render converts a reply into the messages to send to chatID.
// A document is sent first, carrying its caption; the text follows with the
// keyboard attached. Without text the keyboard rides on the document.
func Render(chatID int64, reply domain.Reply) []tgbotapi.Chattable {
	var out []tgbotapi.Chattable

	if reply.Document != nil {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(reply.Document.Path))
		doc.Caption = reply.Document.Caption
		if reply.Text == "" {
			doc.ReplyMarkup = Keyboard(reply.Keyboard)
		}
		out = append(out, doc)
	}
	if reply.Text != "" {
		msg := tgbotapi.NewMessage(chatID, reply.Text)
		msg.ReplyMarkup = Keyboard(reply.Keyboard)
		out = append(out, msg)
	}
	return out
}
