package sensors

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"sensor-bot/internal/logging"
	"sensor-bot/internal/models"
	"sensor-bot/internal/state"
)

// fakeRunner answers by command line.
type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	fail    map[string]bool
}

func (f *fakeRunner) Run(_ context.Context, c models.Command) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[c.Line] {
		return "", errors.New("exit status 1")
	}
	return f.outputs[c.Line], nil
}

func (f *fakeRunner) set(line, out string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[line] = out
}

func testSpecs() []models.SensorSpec {
	return []models.SensorSpec{
		{
			Name:     "cpu_temp",
			Command:  models.Command{Line: "temp"},
			Kind:     models.KindFloat,
			Triggers: []models.TriggerRule{{Op: models.OpGT, Threshold: models.FloatValue(80)}},
		},
		{
			Name:     "disk",
			Command:  models.Command{Line: "disk"},
			Kind:     models.KindInteger,
			Triggers: []models.TriggerRule{{Op: models.OpGE, Threshold: models.IntValue(90)}, {Op: models.OpNE, Threshold: models.IntValue(0)}},
		},
		{
			Name:    "link",
			Command: models.Command{Line: "link"},
			Kind:    models.KindString,
		},
	}
}

func newTestPoller(r CommandRunner, alerts *state.AlertChannel, enabled bool) (*Poller, *state.SnapshotChannel) {
	snaps := state.NewSnapshotChannel()
	p := NewPoller(testSpecs(), r, snaps, alerts, 10*time.Millisecond, enabled, logging.Discard())
	p.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local) }
	return p, snaps
}

func TestPollIsolatesFailures(t *testing.T) {
	r := &fakeRunner{
		outputs: map[string]string{"temp": "85.2", "link": "up"},
		fail:    map[string]bool{"disk": true},
	}
	p, _ := newTestPoller(r, nil, false)

	snap := p.Poll(context.Background())

	if got := snap.Get("cpu_temp"); got != models.FloatValue(85.2) {
		t.Errorf("cpu_temp = %v", got)
	}
	if snap.Get("disk").Available() {
		t.Errorf("disk should be unavailable")
	}
	if got := snap.Get("link"); got != models.StringValue("up") {
		t.Errorf("link = %v", got)
	}
	if len(snap.Values) != 3 {
		t.Errorf("snapshot has %d entries, want one per sensor", len(snap.Values))
	}
}

func TestPollCoercionFailure(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"temp": "hot", "disk": "", "link": "down"}}
	p, _ := newTestPoller(r, nil, false)

	snap := p.Poll(context.Background())
	if snap.Get("cpu_temp").Available() || snap.Get("disk").Available() {
		t.Fatalf("bad readings should be unavailable: %+v", snap.Values)
	}
}

func TestEvaluateEnqueuesEveryMatch(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"temp": "85.2", "disk": "95", "link": "up"}}
	alerts := state.NewAlertChannel(16)
	p, _ := newTestPoller(r, alerts, true)

	snap := p.Poll(context.Background())
	if err := p.Evaluate(context.Background(), snap); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if alerts.Len() != 3 {
		t.Fatalf("queued %d alerts, want 3", alerts.Len())
	}
	first, _ := alerts.Dequeue(context.Background())
	if first.Sensor != "cpu_temp" || !strings.Contains(first.Message, "85.2") || !strings.Contains(first.Message, "gt 80.0") {
		t.Fatalf("first alert = %+v", first)
	}
	if first.Render() != "12:00:00: cpu_temp\n<b>cpu_temp: 85.2 gt 80.0</b>" {
		t.Fatalf("render = %q", first.Render())
	}
	second, _ := alerts.Dequeue(context.Background())
	third, _ := alerts.Dequeue(context.Background())
	if second.Sensor != "disk" || third.Sensor != "disk" {
		t.Fatalf("disk alerts = %+v %+v", second, third)
	}
}

func TestEvaluateSkipsUnavailable(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{}, fail: map[string]bool{"temp": true, "disk": true}}
	alerts := state.NewAlertChannel(16)
	p, _ := newTestPoller(r, alerts, true)

	if err := p.Evaluate(context.Background(), p.Poll(context.Background())); err != nil {
		t.Fatal(err)
	}
	if alerts.Len() != 0 {
		t.Fatalf("unavailable sensors produced %d alerts", alerts.Len())
	}
}

func TestRunPublishesAndStops(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"temp": "20.5", "disk": "0", "link": "up"}}
	alerts := state.NewAlertChannel(16)
	p, snaps := newTestPoller(r, alerts, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	snap, err := snaps.Latest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Get("cpu_temp") != models.FloatValue(20.5) {
		t.Fatalf("cpu_temp = %v", snap.Get("cpu_temp"))
	}

	r.set("temp", "99.9")
	deadline := time.After(time.Second)
	for {
		s, _ := snaps.Peek()
		if s.Get("cpu_temp") == models.FloatValue(99.9) && alerts.Len() > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("newer snapshot or its alert never arrived")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
	a, _ := alerts.Dequeue(context.Background())
	if a.Sensor != "cpu_temp" || !strings.Contains(a.Message, "99.9") {
		t.Fatalf("alert = %+v", a)
	}
}

func TestRunUnblocksWhenQueueFull(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"temp": "85", "disk": "1", "link": "up"}}
	alerts := state.NewAlertChannel(1)
	p, _ := newTestPoller(r, alerts, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller blocked on a full queue after cancellation")
	}
	if alerts.Len() != 1 {
		t.Fatalf("queue len = %d", alerts.Len())
	}
}

func TestEvaluateBlocksOnFullQueueUntilDrained(t *testing.T) {
	alerts := state.NewAlertChannel(state.AlertQueueSize)
	ctx := context.Background()
	for i := 0; i < state.AlertQueueSize; i++ {
		if err := alerts.Enqueue(ctx, models.Alert{Sensor: "backlog"}); err != nil {
			t.Fatal(err)
		}
	}

	r := &fakeRunner{outputs: map[string]string{"temp": "85", "disk": "0", "link": "up"}}
	p, _ := newTestPoller(r, alerts, true)
	snap := p.Poll(ctx)

	done := make(chan error, 1)
	go func() { done <- p.Evaluate(ctx, snap) }()

	select {
	case err := <-done:
		t.Fatalf("Evaluate returned %v with %d alerts pending", err, alerts.Len())
	case <-time.After(50 * time.Millisecond):
	}

	if a, err := alerts.Dequeue(ctx); err != nil || a.Sensor != "backlog" {
		t.Fatalf("Dequeue = %+v, %v", a, err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Evaluate still blocked after a slot was freed")
	}
	if alerts.Len() != state.AlertQueueSize {
		t.Fatalf("queue len = %d", alerts.Len())
	}
}
