// Command ledtest: AW2013 bring-up demo driving static and breathing
// patterns through the led service.
//
// Build/flash (TinyGo):
//
//	tinygo flash -target pico ./cmd/ledtest
//
// Wiring assumptions:
// - I2C0 @ 400 kHz on Pico defaults: SDA=GP4, SCL=GP5.
// - AW2013 on I2C address 0x45 (fixed).
//
// On a host build the I²C bus is emulated and every register transaction is
// traced to stdout, so the sequence can be inspected without hardware.
package main

import (
	"context"
	"fmt"
	"time"

	"ledcode-go/bus"
	"ledcode-go/drivers/aw2013"
	"ledcode-go/services/led"
)

const stepDwell = 5 * time.Second

func main() {
	time.Sleep(2 * time.Second)
	fmt.Println("\n== ledcode: AW2013 demo (static + breathing + synced RGB) ==")

	i2c, err := openI2C()
	if err != nil {
		println("Error: i2c bring-up failed:", err.Error())
		return
	}

	dev := aw2013.New(i2c, aw2013.Config{
		MaxCurrents: [3]aw2013.Current{
			aw2013.CurrentFive,
			aw2013.CurrentFive,
			aw2013.CurrentFive,
		},
	})

	b := bus.NewBus(16)
	conn := b.NewConnection("main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := led.NewService(dev).Start(ctx, conn); err != nil {
		println("Error: led service:", err.Error())
		return
	}
	waitReady(conn)

	steps := []struct {
		name    string
		verb    string
		payload any
	}{
		{"reset controller", "reset", nil},
		{"enable module", "enable", nil},
		{"static white", "static_rgb", led.StaticRGBCmd{RGB: [3]uint8{255, 255, 255}}},
		{"fade to red", "static_rgb", led.StaticRGBCmd{
			RGB:    [3]uint8{255, 0, 0},
			FadeIn: u8(3),
		}},
		{"breathe channel 1", "breathing", led.BreathingCmd{
			Channel:    1,
			Brightness: 200,
			Timing:     aw2013.Timing{Rise: 2, Hold: 1, Fall: 2, Off: 1},
		}},
		{"synced purple breathing", "breathing_rgb", led.BreathingRGBCmd{
			RGB:    [3]uint8{128, 0, 255},
			Timing: aw2013.Timing{Rise: 3, Hold: 2, Fall: 3, Off: 2, Delay: 1},
		}},
		{"all off", "static_rgb", led.StaticRGBCmd{}},
		{"disable module", "disable", nil},
	}

	for _, step := range steps {
		fmt.Println("-- " + step.name)
		if !command(conn, step.verb, step.payload) {
			println("Warn: step failed:", step.name)
		}
		time.Sleep(stepDwell)
	}

	fmt.Println("== demo done ==")
}

func u8(v uint8) *uint8 { return &v }

func waitReady(conn *bus.Connection) {
	sub := conn.Subscribe(bus.T("led", "state"))
	defer conn.Unsubscribe(sub)
	for msg := range sub.Channel() {
		if s, ok := msg.Payload.(string); ok && s == "ready" {
			return
		}
	}
}

// command publishes one control message and waits for its reply.
func command(conn *bus.Connection, verb string, payload any) bool {
	replyTo := bus.T("main", "reply")
	sub := conn.Subscribe(replyTo)
	defer conn.Unsubscribe(sub)

	conn.Publish(&bus.Message{
		Topic:   bus.T("led", "control", verb),
		Payload: payload,
		ReplyTo: replyTo,
	})

	select {
	case msg := <-sub.Channel():
		rep, ok := msg.Payload.(led.Reply)
		if !ok {
			return false
		}
		if !rep.OK {
			println("Warn: reply error:", string(rep.Error))
		}
		return rep.OK
	case <-time.After(2 * time.Second):
		println("Warn: reply timeout for", verb)
		return false
	}
}
