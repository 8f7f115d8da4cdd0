package updates

import (
	"errors"
	"strings"
	"testing"
	"time"

	"sensor-bot/internal/models"
)

func sampleSnapshot() models.Snapshot {
	snap := models.NewSnapshot([]string{"cpu_temp", "disk", "link"}, time.Now())
	snap.Values["cpu_temp"] = models.FloatValue(85.2)
	snap.Values["link"] = models.StringValue("up")
	return snap
}

func TestStatusReport(t *testing.T) {
	got := StatusReport(sampleSnapshot())
	want := "<b>Status</b>:\ncpu_temp: 85.2\ndisk: <b>Error</b>\nlink: up\n"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestRegistryLookup(t *testing.T) {
	r, err := NewRegistry(map[string]string{"/status": "get_status", "/help": "get_help"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	tests := []struct {
		text    string
		handler string
		wantErr bool
	}{
		{"/status", "get_status", false},
		{" /status ", "get_status", false},
		{"/status@sensor_bot", "get_status", false},
		{"/help", "get_help", false},
		{"/reboot", "", true},
		{"status", "", true},
	}
	for _, tt := range tests {
		cmd, err := r.Lookup(tt.text)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownCommand) {
				t.Errorf("Lookup(%q) err = %v, want ErrUnknownCommand", tt.text, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Lookup(%q): %v", tt.text, err)
			continue
		}
		if cmd.HandlerName != tt.handler {
			t.Errorf("Lookup(%q) handler = %s, want %s", tt.text, cmd.HandlerName, tt.handler)
		}
	}
}

func TestRegistryRejectsUnknownHandler(t *testing.T) {
	_, err := NewRegistry(map[string]string{"/reboot": "reboot_host"})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "reboot_host") {
		t.Fatalf("error should name the handler: %v", err)
	}
}

func TestHelpListsCommands(t *testing.T) {
	r, err := NewRegistry(map[string]string{"/status": "get_status", "/help": "get_help"})
	if err != nil {
		t.Fatal(err)
	}
	cmd, _ := r.Lookup("/help")
	got := cmd.Handler(models.Snapshot{})
	if got != "<b>Commands</b>:\n/help\n/status\n" {
		t.Fatalf("help = %q", got)
	}
}
