package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/intake/pkg/domain"
)

// Texts holds every user-facing string the engine emits.
// Empty fields fall back to DefaultTexts.
type Texts struct {
	Welcome        string `yaml:"welcome" json:"welcome"`
	Home           string `yaml:"home" json:"home"`
	Unrecognized   string `yaml:"unrecognized" json:"unrecognized"`
	RejectEmpty    string `yaml:"reject_empty" json:"reject_empty"`
	RejectNoDigits string `yaml:"reject_no_digits" json:"reject_no_digits"`
	RejectChoice   string `yaml:"reject_choice" json:"reject_choice"`
	CurrentAnswer  string `yaml:"current_answer" json:"current_answer"` // fmt verb %s is the answer
	SummaryHeader  string `yaml:"summary_header" json:"summary_header"`
	ConfirmHint    string `yaml:"confirm_hint" json:"confirm_hint"`
	Thanks         string `yaml:"thanks" json:"thanks"`
	Cancelled      string `yaml:"cancelled" json:"cancelled"`
	CatalogCaption string `yaml:"catalog_caption" json:"catalog_caption"`
	CatalogMissing string `yaml:"catalog_missing" json:"catalog_missing"`
	CatalogFailed  string `yaml:"catalog_failed" json:"catalog_failed"`
}

// DefaultTexts returns the built-in English texts.
func DefaultTexts() Texts {
	return Texts{
		Welcome:        "Hi! Let's find the right kitchen for you.\nChoose an action:",
		Home:           "You are back in the main menu. What would you like to do?",
		Unrecognized:   "Sorry, I didn't get that. Please choose an action from the menu.",
		RejectEmpty:    "Please send a non-empty answer.",
		RejectNoDigits: "Dimensions should contain at least one number, e.g. 2.5m x 2.0m.",
		RejectChoice:   "Please pick one of the options below.",
		CurrentAnswer:  "Current answer: %s",
		SummaryHeader:  "Please check your request:",
		ConfirmHint:    "Confirm to send it, Edit to change your answers, or Cancel.",
		Thanks:         "Thank you! Your request has been sent.",
		Cancelled:      "Your request has been cancelled.",
		CatalogCaption: "📘 Here is our kitchen catalog.",
		CatalogMissing: "The catalog file was not found.",
		CatalogFailed:  "⚠️ Something went wrong while sending the catalog.",
	}
}

// Merge returns t with every empty text filled from fallback.
func (t Texts) Merge(fallback Texts) Texts {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	return Texts{
		Welcome:        pick(t.Welcome, fallback.Welcome),
		Home:           pick(t.Home, fallback.Home),
		Unrecognized:   pick(t.Unrecognized, fallback.Unrecognized),
		RejectEmpty:    pick(t.RejectEmpty, fallback.RejectEmpty),
		RejectNoDigits: pick(t.RejectNoDigits, fallback.RejectNoDigits),
		RejectChoice:   pick(t.RejectChoice, fallback.RejectChoice),
		CurrentAnswer:  pick(t.CurrentAnswer, fallback.CurrentAnswer),
		SummaryHeader:  pick(t.SummaryHeader, fallback.SummaryHeader),
		ConfirmHint:    pick(t.ConfirmHint, fallback.ConfirmHint),
		Thanks:         pick(t.Thanks, fallback.Thanks),
		Cancelled:      pick(t.Cancelled, fallback.Cancelled),
		CatalogCaption: pick(t.CatalogCaption, fallback.CatalogCaption),
		CatalogMissing: pick(t.CatalogMissing, fallback.CatalogMissing),
		CatalogFailed:  pick(t.CatalogFailed, fallback.CatalogFailed),
	}
}

func (t Texts) rejection(r Reason) string {
	switch r {
	case ReasonNoDigits:
		return t.RejectNoDigits
	case ReasonNotAChoice:
		return t.RejectChoice
	default:
		return t.RejectEmpty
	}
}

// Texts returns the texts the engine renders with.
func (e *Engine) Texts() Texts {
	return e.texts
}

// MenuKeyboard returns the idle (main menu) keyboard.
func (e *Engine) MenuKeyboard() []string {
	return []string{e.commands.Label(CmdCatalog), e.commands.Label(CmdStartForm)}
}

func (e *Engine) menu(text string) domain.Reply {
	return domain.Reply{Text: text, Keyboard: e.MenuKeyboard()}
}

// renderPrompt renders the question for form step i, optionally preceded by
// a notice (e.g. a rejection) and followed by the answer already on file.
func (e *Engine) renderPrompt(session *domain.Session, i int, notice string) domain.Reply {
	field, _ := e.form.At(i)

	var b strings.Builder
	if notice != "" {
		b.WriteString(notice)
		b.WriteString("\n\n")
	}
	b.WriteString(field.Prompt)
	prev, answered := session.Answers[field.Name]
	if answered && prev != "" {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(e.texts.CurrentAnswer, prev))
	}

	keyboard := make([]string, 0, len(field.Choices)+3)
	keyboard = append(keyboard, field.Choices...)
	if answered {
		keyboard = append(keyboard, e.commands.Label(CmdKeep))
	}
	keyboard = append(keyboard, e.commands.Label(CmdBack), e.commands.Label(CmdHome))

	return domain.Reply{
		Text:     b.String(),
		Keyboard: keyboard,
		FreeText: field.Rule != domain.RuleChoice,
	}
}

// renderSummary renders the confirmation prompt with every answer on file.
func (e *Engine) renderSummary(session *domain.Session) domain.Reply {
	var b strings.Builder
	b.WriteString(e.texts.SummaryHeader)
	b.WriteString("\n\n")
	for _, a := range e.form.Ordered(session.Answers) {
		fmt.Fprintf(&b, "%s: %s\n", a.Label, a.Value)
	}
	b.WriteString("\n")
	b.WriteString(e.texts.ConfirmHint)

	return domain.Reply{
		Text: b.String(),
		Keyboard: []string{
			e.commands.Label(CmdConfirm),
			e.commands.Label(CmdEdit),
			e.commands.Label(CmdCancel),
			e.commands.Label(CmdBack),
		},
	}
}
