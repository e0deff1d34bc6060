package led

import (
	"ledcode-go/drivers/aw2013"
	"ledcode-go/errcode"
)

// Command payloads. Publishers can send these structs directly or, when they
// come from a generic/deserialized source, the equivalent map[string]any
// (numbers as float64, JSON-style).

type StaticCmd struct {
	Channel    uint8  `json:"channel"`
	Brightness uint8  `json:"brightness"`
	FadeIn     *uint8 `json:"fade_in,omitempty"`
	FadeOut    *uint8 `json:"fade_out,omitempty"`
}

type StaticRGBCmd struct {
	RGB     [3]uint8 `json:"rgb"`
	FadeIn  *uint8   `json:"fade_in,omitempty"`
	FadeOut *uint8   `json:"fade_out,omitempty"`
}

type BreathingCmd struct {
	Channel    uint8         `json:"channel"`
	Brightness uint8         `json:"brightness"`
	Timing     aw2013.Timing `json:"timing"`
}

type BreathingRGBCmd struct {
	RGB    [3]uint8      `json:"rgb"`
	Timing aw2013.Timing `json:"timing"`
}

// Reply is published to a message's ReplyTo topic when one is set.
type Reply struct {
	OK    bool         `json:"ok"`
	Error errcode.Code `json:"error,omitempty"`
}

// ---- map[string]any decoding ----

func mapU8(m map[string]any, key string) (uint8, bool) {
	switch v := m[key].(type) {
	case float64:
		return uint8(v), true
	case int:
		return uint8(v), true
	}
	return 0, false
}

func mapU8Opt(m map[string]any, key string) *uint8 {
	if v, ok := mapU8(m, key); ok {
		return &v
	}
	return nil
}

func mapRGB(m map[string]any) ([3]uint8, bool) {
	arr, ok := m["rgb"].([]any)
	if !ok || len(arr) != 3 {
		return [3]uint8{}, false
	}
	var rgb [3]uint8
	for i, e := range arr {
		f, ok := e.(float64)
		if !ok {
			return [3]uint8{}, false
		}
		rgb[i] = uint8(f)
	}
	return rgb, true
}

func mapTiming(m map[string]any) aw2013.Timing {
	t, _ := m["timing"].(map[string]any)
	var out aw2013.Timing
	if v, ok := mapU8(t, "delay"); ok {
		out.Delay = v
	}
	if v, ok := mapU8(t, "rise"); ok {
		out.Rise = v
	}
	if v, ok := mapU8(t, "hold"); ok {
		out.Hold = v
	}
	if v, ok := mapU8(t, "fall"); ok {
		out.Fall = v
	}
	if v, ok := mapU8(t, "off"); ok {
		out.Off = v
	}
	if v, ok := mapU8(t, "cycles"); ok {
		out.Cycles = v
	}
	return out
}

func decodeStatic(payload any) (StaticCmd, error) {
	switch x := payload.(type) {
	case StaticCmd:
		return x, nil
	case *StaticCmd:
		if x != nil {
			return *x, nil
		}
	case map[string]any:
		var c StaticCmd
		ch, ok := mapU8(x, "channel")
		if !ok {
			return StaticCmd{}, errcode.InvalidPayload
		}
		c.Channel = ch
		c.Brightness, _ = mapU8(x, "brightness")
		c.FadeIn = mapU8Opt(x, "fade_in")
		c.FadeOut = mapU8Opt(x, "fade_out")
		return c, nil
	}
	return StaticCmd{}, errcode.InvalidPayload
}

func decodeStaticRGB(payload any) (StaticRGBCmd, error) {
	switch x := payload.(type) {
	case StaticRGBCmd:
		return x, nil
	case *StaticRGBCmd:
		if x != nil {
			return *x, nil
		}
	case map[string]any:
		rgb, ok := mapRGB(x)
		if !ok {
			return StaticRGBCmd{}, errcode.InvalidPayload
		}
		return StaticRGBCmd{
			RGB:     rgb,
			FadeIn:  mapU8Opt(x, "fade_in"),
			FadeOut: mapU8Opt(x, "fade_out"),
		}, nil
	}
	return StaticRGBCmd{}, errcode.InvalidPayload
}

func decodeBreathing(payload any) (BreathingCmd, error) {
	switch x := payload.(type) {
	case BreathingCmd:
		return x, nil
	case *BreathingCmd:
		if x != nil {
			return *x, nil
		}
	case map[string]any:
		ch, ok := mapU8(x, "channel")
		if !ok {
			return BreathingCmd{}, errcode.InvalidPayload
		}
		var c BreathingCmd
		c.Channel = ch
		c.Brightness, _ = mapU8(x, "brightness")
		c.Timing = mapTiming(x)
		return c, nil
	}
	return BreathingCmd{}, errcode.InvalidPayload
}

func decodeBreathingRGB(payload any) (BreathingRGBCmd, error) {
	switch x := payload.(type) {
	case BreathingRGBCmd:
		return x, nil
	case *BreathingRGBCmd:
		if x != nil {
			return *x, nil
		}
	case map[string]any:
		rgb, ok := mapRGB(x)
		if !ok {
			return BreathingRGBCmd{}, errcode.InvalidPayload
		}
		return BreathingRGBCmd{RGB: rgb, Timing: mapTiming(x)}, nil
	}
	return BreathingRGBCmd{}, errcode.InvalidPayload
}
