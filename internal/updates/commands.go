package updates

import (
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"

	"sensor-bot/internal/models"
)

// ErrUnknownCommand is returned for command text or handler names that are not registered.
var ErrUnknownCommand = errors.New("no such command")

// Handler builds a reply from the current snapshot.
type Handler func(snap models.Snapshot) string

// Command is a resolved registry entry.
type Command struct {
	Text        string
	HandlerName string
	Handler     Handler
}

// Registry maps command text such as "/status" to a handler. It is read-only after construction.
type Registry struct {
	commands map[string]Command
}

// NewRegistry resolves every configured command text to a built-in handler by name.
func NewRegistry(commands map[string]string) (*Registry, error) {
	r := &Registry{commands: make(map[string]Command, len(commands))}
	handlers := r.builtins()
	for text, name := range commands {
		h, ok := handlers[name]
		if !ok {
			return nil, fmt.Errorf("command %s: handler %q: %w", text, name, ErrUnknownCommand)
		}
		text = strings.TrimSpace(text)
		r.commands[text] = Command{Text: text, HandlerName: name, Handler: h}
	}
	return r, nil
}

func (r *Registry) builtins() map[string]Handler {
	return map[string]Handler{
		"get_status": StatusReport,
		"get_help":   r.help,
	}
}

// Lookup finds the command for message text. "/status@my_bot" matches "/status".
func (r *Registry) Lookup(text string) (Command, error) {
	text = strings.TrimSpace(text)
	if cmd, ok := r.commands[text]; ok {
		return cmd, nil
	}
	if strings.HasPrefix(text, "/") {
		if at := strings.Index(text, "@"); at > 0 {
			if cmd, ok := r.commands[text[:at]]; ok {
				return cmd, nil
			}
		}
	}
	return Command{}, fmt.Errorf("%q: %w", text, ErrUnknownCommand)
}

// Texts lists the registered command texts in sorted order.
func (r *Registry) Texts() []string {
	out := make([]string, 0, len(r.commands))
	for text := range r.commands {
		out = append(out, text)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) help(models.Snapshot) string {
	var b strings.Builder
	b.WriteString("<b>Commands</b>:\n")
	for _, text := range r.Texts() {
		fmt.Fprintf(&b, "%s\n", text)
	}
	return b.String()
}

// StatusReport renders one line per sensor; unavailable readings show as an error.
func StatusReport(snap models.Snapshot) string {
	var b strings.Builder
	b.WriteString("<b>Status</b>:\n")
	for _, name := range snap.Names {
		value := snap.Get(name)
		if value.Available() {
			fmt.Fprintf(&b, "%s: %s\n", html.EscapeString(name), html.EscapeString(value.String()))
		} else {
			fmt.Fprintf(&b, "%s: <b>Error</b>\n", html.EscapeString(name))
		}
	}
	return b.String()
}
