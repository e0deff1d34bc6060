package led

import (
	"context"
	"errors"
	"testing"
	"time"

	"tinygo.org/x/drivers"

	"ledcode-go/bus"
	"ledcode-go/drivers/aw2013"
	"ledcode-go/errcode"
)

// Compile-time check.
var _ drivers.I2C = (*fakeBus)(nil)

const regLEDEnable = 0x30

// fakeBus records write transactions and emulates the LED enable register.
type fakeBus struct {
	enable byte
	writes [][2]byte

	failAt int
	errTx  error
	n      int
}

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	f.n++
	if f.failAt > 0 && f.n == f.failAt {
		return f.errTx
	}
	if len(w) == 1 && w[0] == regLEDEnable && len(r) == 1 {
		r[0] = f.enable
		return nil
	}
	if len(w) == 2 {
		f.writes = append(f.writes, [2]byte{w[0], w[1]})
		if w[0] == regLEDEnable {
			f.enable = w[1]
		}
	}
	return nil
}

type harness struct {
	fake   *fakeBus
	conn   *bus.Connection
	cancel context.CancelFunc
}

func startService(t *testing.T, fake *fakeBus) *harness {
	t.Helper()

	dev := aw2013.New(fake, aw2013.Config{
		MaxCurrents: [3]aw2013.Current{aw2013.CurrentFive, aw2013.CurrentFive, aw2013.CurrentFive},
	})

	b := bus.NewBus(16)
	conn := b.NewConnection("test")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	stateSub := conn.Subscribe(topicState)
	defer conn.Unsubscribe(stateSub)

	if err := NewService(dev).Start(ctx, conn); err != nil {
		t.Fatalf("start: %v", err)
	}

	// "ready" is retained once the control subscription is live.
	select {
	case msg := <-stateSub.Channel():
		if msg.Payload.(string) != "ready" {
			t.Fatalf("state = %v, want ready", msg.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for led service to come up")
	}

	return &harness{fake: fake, conn: conn, cancel: cancel}
}

// command publishes a control message and waits for its reply.
func (h *harness) command(t *testing.T, verb string, payload any) Reply {
	t.Helper()

	replyTo := bus.T("test", "reply", verb)
	sub := h.conn.Subscribe(replyTo)
	defer h.conn.Unsubscribe(sub)

	h.conn.Publish(&bus.Message{
		Topic:   bus.T("led", "control", verb),
		Payload: payload,
		ReplyTo: replyTo,
	})

	select {
	case msg := <-sub.Channel():
		return msg.Payload.(Reply)
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for %s reply", verb)
		return Reply{}
	}
}

func TestServiceStaticCommand(t *testing.T) {
	h := startService(t, &fakeBus{})

	rep := h.command(t, "static", StaticCmd{Channel: 0, Brightness: 128})
	if !rep.OK {
		t.Fatalf("reply = %+v", rep)
	}

	want := [][2]byte{{0x31, 0x01}, {0x34, 128}, {regLEDEnable, 0x01}}
	got := h.fake.writes
	if len(got) != len(want) {
		t.Fatalf("writes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("write[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestServiceUnknownChannel(t *testing.T) {
	h := startService(t, &fakeBus{})

	rep := h.command(t, "breathing", BreathingCmd{Channel: 3, Brightness: 10})
	if rep.OK || rep.Error != errcode.UnknownChannel {
		t.Fatalf("reply = %+v, want unknown_channel", rep)
	}
	if h.fake.n != 0 {
		t.Fatalf("bus touched for invalid channel: %d transactions", h.fake.n)
	}
}

func TestServiceUnsupportedVerb(t *testing.T) {
	h := startService(t, &fakeBus{})

	rep := h.command(t, "rainbow", nil)
	if rep.OK || rep.Error != errcode.Unsupported {
		t.Fatalf("reply = %+v, want unsupported", rep)
	}
}

func TestServiceInvalidPayload(t *testing.T) {
	h := startService(t, &fakeBus{})

	rep := h.command(t, "static", "not a command")
	if rep.OK || rep.Error != errcode.InvalidPayload {
		t.Fatalf("reply = %+v, want invalid_payload", rep)
	}
}

func TestServiceMapPayload(t *testing.T) {
	h := startService(t, &fakeBus{})

	rep := h.command(t, "static_rgb", map[string]any{
		"rgb":     []any{float64(10), float64(20), float64(30)},
		"fade_in": float64(3),
	})
	if !rep.OK {
		t.Fatalf("reply = %+v", rep)
	}
	if h.fake.enable != 0x07 {
		t.Fatalf("enable mask = %#x, want 0x07", h.fake.enable)
	}
}

func TestServiceBreathingRGB(t *testing.T) {
	h := startService(t, &fakeBus{enable: 0x07})

	rep := h.command(t, "breathing_rgb", BreathingRGBCmd{
		RGB:    [3]uint8{0, 255, 0},
		Timing: aw2013.Timing{Rise: 2, Hold: 2, Fall: 2, Off: 2},
	})
	if !rep.OK {
		t.Fatalf("reply = %+v", rep)
	}
	if h.fake.enable != 0x02 {
		t.Fatalf("enable mask = %#x, want 0x02", h.fake.enable)
	}
}

func TestServiceTransportError(t *testing.T) {
	h := startService(t, &fakeBus{failAt: 1, errTx: errors.New("i2c: NACK")})

	rep := h.command(t, "reset", nil)
	if rep.OK || rep.Error != errcode.BusError {
		t.Fatalf("reply = %+v, want bus_error", rep)
	}
}

func TestServiceStopPublishesState(t *testing.T) {
	h := startService(t, &fakeBus{})

	stateSub := h.conn.Subscribe(topicState)
	defer h.conn.Unsubscribe(stateSub)
	// Drain the retained "ready".
	<-stateSub.Channel()

	h.cancel()

	select {
	case msg := <-stateSub.Channel():
		if msg.Payload.(string) != "stopped" {
			t.Fatalf("state = %v, want stopped", msg.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for stopped state")
	}
}
