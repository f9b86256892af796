package runtime

import (
	"fmt"
	"strings"
)

// Command is a reserved navigational token recognized in user input.
type Command string

const (
	CmdNone      Command = ""
	CmdWelcome   Command = "welcome"
	CmdCatalog   Command = "catalog"
	CmdStartForm Command = "start_form"
	CmdHome      Command = "home"
	CmdBack      Command = "back"
	CmdKeep      Command = "keep"
	CmdConfirm   Command = "confirm"
	CmdEdit      Command = "edit"
	CmdCancel    Command = "cancel"
)

// Commands lists the accepted aliases for every reserved command.
// The first alias of each list is used as the keyboard button label.
// Matching is done on trimmed input, case-insensitively.
type Commands struct {
	Welcome   []string `yaml:"welcome" json:"welcome"`
	Catalog   []string `yaml:"catalog" json:"catalog"`
	StartForm []string `yaml:"start_form" json:"start_form"`
	Home      []string `yaml:"home" json:"home"`
	Back      []string `yaml:"back" json:"back"`
	Keep      []string `yaml:"keep" json:"keep"`
	Confirm   []string `yaml:"confirm" json:"confirm"`
	Edit      []string `yaml:"edit" json:"edit"`
	Cancel    []string `yaml:"cancel" json:"cancel"`
}

// DefaultCommands returns the built-in English command set.
func DefaultCommands() Commands {
	return Commands{
		Welcome:   []string{"/start"},
		Catalog:   []string{"📸 Browse catalog", "/catalog", "catalog"},
		StartForm: []string{"🧩 Design my kitchen", "/form", "start"},
		Home:      []string{"🏠 Main menu", "/home", "home", "menu"},
		Back:      []string{"🔙 Back", "/back", "back"},
		Keep:      []string{"⏭ Keep answer", "/keep", "keep"},
		Confirm:   []string{"✅ Confirm", "/confirm", "confirm"},
		Edit:      []string{"✏️ Edit", "/edit", "edit"},
		Cancel:    []string{"❌ Cancel", "/cancel", "cancel"},
	}
}

// Merge returns c with every empty alias list filled from fallback.
func (c Commands) Merge(fallback Commands) Commands {
	pick := func(a, b []string) []string {
		if len(a) > 0 {
			return a
		}
		return b
	}
	return Commands{
		Welcome:   pick(c.Welcome, fallback.Welcome),
		Catalog:   pick(c.Catalog, fallback.Catalog),
		StartForm: pick(c.StartForm, fallback.StartForm),
		Home:      pick(c.Home, fallback.Home),
		Back:      pick(c.Back, fallback.Back),
		Keep:      pick(c.Keep, fallback.Keep),
		Confirm:   pick(c.Confirm, fallback.Confirm),
		Edit:      pick(c.Edit, fallback.Edit),
		Cancel:    pick(c.Cancel, fallback.Cancel),
	}
}

func (c Commands) table() map[Command][]string {
	return map[Command][]string{
		CmdWelcome:   c.Welcome,
		CmdCatalog:   c.Catalog,
		CmdStartForm: c.StartForm,
		CmdHome:      c.Home,
		CmdBack:      c.Back,
		CmdKeep:      c.Keep,
		CmdConfirm:   c.Confirm,
		CmdEdit:      c.Edit,
		CmdCancel:    c.Cancel,
	}
}

// Label returns the keyboard label for cmd.
func (c Commands) Label(cmd Command) string {
	aliases := c.table()[cmd]
	if len(aliases) == 0 {
		return ""
	}
	return aliases[0]
}

// lookup is the parsed form of Commands: normalized alias -> command.
type lookup map[string]Command

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// compile builds the alias index, rejecting aliases shared by two commands.
func (c Commands) compile() (lookup, error) {
	idx := make(lookup)
	for cmd, aliases := range c.table() {
		if len(aliases) == 0 {
			return nil, fmt.Errorf("command %q has no alias", cmd)
		}
		for _, alias := range aliases {
			key := normalize(alias)
			if key == "" {
				return nil, fmt.Errorf("command %q has an empty alias", cmd)
			}
			if other, dup := idx[key]; dup && other != cmd {
				return nil, fmt.Errorf("alias %q is used by both %q and %q", alias, other, cmd)
			}
			idx[key] = cmd
		}
	}
	return idx, nil
}

// parse maps input text to a command, or CmdNone.
func (l lookup) parse(text string) Command {
	return l[normalize(text)]
}
