package editor

// Action is a logical editing action. Backends translate raw key input into
// actions through the configured keymap; the session never sees key codes.
type Action string

const (
	ActionInsert          Action = "insert" // carries the typed text
	ActionSubmit          Action = "submit"
	ActionComplete        Action = "complete"
	ActionCompleteReverse Action = "complete-reverse"
	ActionBackspace       Action = "backspace"
	ActionDeleteWord      Action = "delete-word"
	ActionDeleteForward   Action = "delete-forward"
	ActionCutToEnd        Action = "cut-to-end"
	ActionYank            Action = "yank"
	ActionClearLine       Action = "clear-line"
	ActionClearScreen     Action = "clear-screen"
	ActionLeft            Action = "left"
	ActionRight           Action = "right"
	ActionHome            Action = "home"
	ActionEnd             Action = "end"
	ActionHistoryBack     Action = "history-back"
	ActionHistoryForward  Action = "history-forward"
	ActionHistoryFirst    Action = "history-first"
	ActionHistoryLast     Action = "history-last"
	ActionInterrupt       Action = "interrupt"
	ActionExit            Action = "exit"
	ActionNone            Action = ""
)

// DefaultKeymap maps each action to the key identifiers that trigger it.
// The config file may override any entry.
func DefaultKeymap() map[Action][]string {
	return map[Action][]string{
		ActionSubmit:          {"enter"},
		ActionComplete:        {"tab"},
		ActionCompleteReverse: {"shift+tab"},
		ActionBackspace:       {"backspace", "ctrl+h"},
		ActionDeleteWord:      {"ctrl+w"},
		ActionDeleteForward:   {"delete", "ctrl+d"},
		ActionCutToEnd:        {"ctrl+k"},
		ActionYank:            {"ctrl+y"},
		ActionClearLine:       {"ctrl+u"},
		ActionClearScreen:     {"ctrl+l"},
		ActionLeft:            {"left", "ctrl+b"},
		ActionRight:           {"right", "ctrl+f"},
		ActionHome:            {"home", "ctrl+a"},
		ActionEnd:             {"end", "ctrl+e"},
		ActionHistoryBack:     {"up", "ctrl+p"},
		ActionHistoryForward:  {"down", "ctrl+n"},
		ActionHistoryFirst:    {"pgup"},
		ActionHistoryLast:     {"pgdown"},
		ActionInterrupt:       {"ctrl+c"},
	}
}

// Keymap resolves key identifiers to actions.
type Keymap map[string]Action

// NewKeymap inverts an action table into a key lookup map.
func NewKeymap(table map[Action][]string) Keymap {
	km := make(Keymap, len(table)*2)
	for action, keys := range table {
		for _, k := range keys {
			km[k] = action
		}
	}
	return km
}

// Resolve maps a key id to its action, or ActionNone.
func (km Keymap) Resolve(key string) Action {
	return km[key]
}
