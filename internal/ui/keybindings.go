package ui

// KeyMode represents the keybinding mode for the UI.
type KeyMode string

const (
	// KeyModeFunction keeps the filter focused and maps actions to function keys.
	KeyModeFunction KeyMode = "function"
	// KeyModeVim enables modal vim-style keybindings (j/k navigation, / to type).
	KeyModeVim KeyMode = "vim"
	// KeyModeEmacs keeps the filter focused and maps actions to ctrl/alt chords.
	KeyModeEmacs KeyMode = "emacs"
)

// DefaultKeyMode is the default keybinding mode.
const DefaultKeyMode = KeyModeFunction

// ValidKeyModes lists all valid key modes for validation.
var ValidKeyModes = []KeyMode{KeyModeFunction, KeyModeVim, KeyModeEmacs}

// IsValidKeyMode checks if a key mode string is valid.
func IsValidKeyMode(mode string) bool {
	for _, m := range ValidKeyModes {
		if string(m) == mode {
			return true
		}
	}
	return false
}

// KeyAction represents an action triggered by a keybinding.
type KeyAction string

const (
	ActionNone     KeyAction = ""
	ActionDown     KeyAction = "down"
	ActionUp       KeyAction = "up"
	ActionTop      KeyAction = "top"
	ActionBottom   KeyAction = "bottom"
	ActionHelp     KeyAction = "help"
	ActionCopy     KeyAction = "copy"
	ActionOpen     KeyAction = "open"
	ActionView     KeyAction = "view"
	ActionQuit     KeyAction = "quit"
	ActionDetail   KeyAction = "detail"
	ActionFilter   KeyAction = "filter"    // vim: focus the filter input ('/')
	ActionClear    KeyAction = "clear"     // reset the query (emacs ctrl+g)
	ActionPendingG KeyAction = "pending_g" // waiting for the second key in a gg sequence
)

// FunctionKeyBindings maps keys to actions for function mode. Printable keys
// never appear here; they always feed the filter input.
// This is the default mapping; it can be overridden by config.
var FunctionKeyBindings = map[string]KeyAction{
	"f1":  ActionHelp,
	"f5":  ActionCopy,
	"f7":  ActionOpen,
	"f8":  ActionView,
	"f10": ActionQuit,
}

// VimKeyBindings maps keys to actions for vim normal mode.
// This is the default mapping; it can be overridden by config.
var VimKeyBindings = map[string]KeyAction{
	"j":     ActionDown,
	"k":     ActionUp,
	"g":     ActionPendingG,
	"G":     ActionBottom,
	"?":     ActionHelp,
	"y":     ActionCopy,
	"o":     ActionOpen,
	"v":     ActionView,
	"q":     ActionQuit,
	"/":     ActionFilter,
	"enter": ActionDetail,
}

// EmacsKeyBindings maps keys to actions for emacs mode. Only modifier chords
// appear here so plain typing still feeds the filter input.
var EmacsKeyBindings = map[string]KeyAction{
	"ctrl+n": ActionDown,
	"ctrl+p": ActionUp,
	"alt+<":  ActionTop,
	"alt+>":  ActionBottom,
	"f1":     ActionHelp, // ctrl+h is backspace in terminals
	"alt+w":  ActionCopy,
	"alt+o":  ActionOpen,
	"ctrl+t": ActionView,
	"ctrl+g": ActionClear,
	"ctrl+q": ActionQuit,
}

// actionToKeyAction maps config action names to KeyAction constants.
var actionToKeyAction = map[string]KeyAction{
	"help": ActionHelp,
	"copy": ActionCopy,
	"open": ActionOpen,
	"view": ActionView,
	"quit": ActionQuit,
}

// UpdateKeyBindingsFromConfig rebuilds the per-mode keybindings from menu config.
// Called after config is loaded to apply custom key mappings.
func UpdateKeyBindingsFromConfig(menu MenuConfig) {
	rebind := func(bindings map[string]KeyAction, key string, action KeyAction) {
		if key == "" {
			return
		}
		for k, v := range bindings {
			if v == action {
				delete(bindings, k)
			}
		}
		bindings[key] = action
	}

	for _, item := range menu.Items {
		if !item.Enabled {
			continue
		}
		action := item.Action
		if action == "" {
			continue
		}
		keyAction, ok := actionToKeyAction[action]
		if !ok {
			continue
		}
		rebind(FunctionKeyBindings, item.Keys.Function, keyAction)
		rebind(VimKeyBindings, item.Keys.Vim, keyAction)
		rebind(EmacsKeyBindings, item.Keys.Emacs, keyAction)
	}
}

// handleFunctionKey looks up a key press in function mode.
// Returns ActionNone if the key is not a function binding.
func (m *Model) handleFunctionKey(keyStr string) KeyAction {
	action, ok := FunctionKeyBindings[keyStr]
	if !ok {
		return ActionNone
	}
	return action
}

// handleVimKey processes a key press in vim normal mode and returns the action
// to take. Returns ActionNone if the key is not a vim binding. Must not be
// called while typing is active; '/' typing entry is the only route back in.
func (m *Model) handleVimKey(keyStr string) KeyAction {
	// Check for pending 'g' key (for gg sequence)
	if m.PendingVimKey == "g" {
		m.PendingVimKey = ""
		if keyStr == "g" {
			return ActionTop
		}
		// Not 'g', so the pending 'g' is consumed without action.
		// Fall through to check if this key has its own binding.
	}

	action, ok := VimKeyBindings[keyStr]
	if !ok {
		return ActionNone
	}

	if action == ActionPendingG {
		m.PendingVimKey = "g"
		return ActionNone
	}

	return action
}

// handleEmacsKey looks up a key press in emacs mode.
// Returns ActionNone if the key is not an emacs binding.
func (m *Model) handleEmacsKey(keyStr string) KeyAction {
	action, ok := EmacsKeyBindings[keyStr]
	if !ok {
		return ActionNone
	}
	return action
}

// keyActionFor resolves the action for a key press under the model's key mode.
func (m *Model) keyActionFor(keyStr string) KeyAction {
	switch m.KeyMode {
	case KeyModeVim:
		if m.TypingActive {
			return ActionNone
		}
		return m.handleVimKey(keyStr)
	case KeyModeEmacs:
		return m.handleEmacsKey(keyStr)
	default:
		return m.handleFunctionKey(keyStr)
	}
}
