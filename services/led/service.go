// Package led exposes the AW2013 driver over the in-process message bus.
//
// The service goroutine is the only owner of the driver handle, which gives
// callers the serialization the driver's enable-register read-modify-write
// requires for free: commands from any number of publishers are applied one
// at a time, in arrival order.
package led

import (
	"context"

	"ledcode-go/bus"
	"ledcode-go/drivers/aw2013"
	"ledcode-go/errcode"
)

var (
	topicControl = bus.T("led", "control", bus.WildcardOne)
	topicState   = bus.T("led", "state")
)

// Control verbs, the last element of led/control/<verb>.
const (
	verbReset        = "reset"
	verbEnable       = "enable"
	verbDisable      = "disable"
	verbStatic       = "static"
	verbStaticRGB    = "static_rgb"
	verbBreathing    = "breathing"
	verbBreathingRGB = "breathing_rgb"
)

type Service struct {
	dev *aw2013.Device
}

func NewService(dev *aw2013.Device) *Service {
	return &Service{dev: dev}
}

// Start launches the service loop.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	sub := conn.Subscribe(topicControl)
	defer conn.Unsubscribe(sub)

	conn.Publish(conn.NewMessage(topicState, "ready", true))

	for {
		select {
		case <-ctx.Done():
			println("Info: led service stopping")
			conn.Publish(conn.NewMessage(topicState, "stopped", true))
			return
		case msg := <-sub.Channel():
			err := s.handle(msg.Topic[len(msg.Topic)-1], msg.Payload)
			if err != nil {
				println("Warn: led command failed:", err.Error())
			}
			if msg.ReplyTo != nil {
				conn.Publish(&bus.Message{
					Topic:   msg.ReplyTo,
					Payload: Reply{OK: err == nil, Error: replyCode(err)},
				})
			}
		}
	}
}

func replyCode(err error) errcode.Code {
	if err == nil {
		return ""
	}
	return errcode.Of(err)
}

func (s *Service) handle(verb string, payload any) error {
	switch verb {
	case verbReset:
		return busErr(verb, s.dev.Reset())
	case verbEnable:
		return busErr(verb, s.dev.Enable())
	case verbDisable:
		return busErr(verb, s.dev.Disable())

	case verbStatic:
		c, err := decodeStatic(payload)
		if err != nil {
			return err
		}
		ch, err := channel(c.Channel)
		if err != nil {
			return err
		}
		return busErr(verb, s.dev.SetStatic(ch, c.Brightness, c.FadeIn, c.FadeOut))

	case verbStaticRGB:
		c, err := decodeStaticRGB(payload)
		if err != nil {
			return err
		}
		return busErr(verb, s.dev.SetStaticRGB(c.RGB, c.FadeIn, c.FadeOut))

	case verbBreathing:
		c, err := decodeBreathing(payload)
		if err != nil {
			return err
		}
		ch, err := channel(c.Channel)
		if err != nil {
			return err
		}
		return busErr(verb, s.dev.SetBreathing(ch, c.Brightness, c.Timing))

	case verbBreathingRGB:
		c, err := decodeBreathingRGB(payload)
		if err != nil {
			return err
		}
		return busErr(verb, s.dev.SetBreathingRGB(c.RGB, c.Timing))

	default:
		return errcode.Unsupported
	}
}

func channel(n uint8) (aw2013.Led, error) {
	if n > 2 {
		return 0, errcode.UnknownChannel
	}
	return aw2013.Led(n), nil
}

// busErr tags a transport failure with its verb while keeping the cause.
func busErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &errcode.E{C: errcode.BusError, Op: op, Err: err}
}
