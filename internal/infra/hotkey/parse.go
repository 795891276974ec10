package hotkey

import (
	"fmt"
	"strconv"
	"strings"
)

// Modifier masks as RegisterHotKey expects them.
const (
	modAlt     = 0x0001
	modControl = 0x0002
	modShift   = 0x0004
	modWin     = 0x0008
)

// parseHotkey turns a spec like "ctrl+alt+d" into the modifier mask and
// virtual-key code. Matching is case-insensitive; the last token names the
// key, everything before it names modifiers.
func parseHotkey(spec string) (uint32, uint32, error) {
	if strings.TrimSpace(spec) == "" {
		return 0, 0, fmt.Errorf("empty hotkey")
	}

	parts := strings.Split(spec, "+")
	for i := range parts {
		parts[i] = strings.TrimSpace(strings.ToLower(parts[i]))
	}

	var mod uint32
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "ctrl", "control":
			mod |= modControl
		case "alt", "menu":
			mod |= modAlt
		case "shift":
			mod |= modShift
		case "win", "meta", "super":
			mod |= modWin
		default:
			return 0, 0, fmt.Errorf("unknown modifier %q", p)
		}
	}

	vk, err := keyCode(parts[len(parts)-1])
	if err != nil {
		return 0, 0, err
	}
	return mod, vk, nil
}

func keyCode(key string) (uint32, error) {
	if len(key) == 1 {
		ch := key[0]
		switch {
		case ch >= 'a' && ch <= 'z':
			return uint32(ch - 'a' + 'A'), nil
		case ch >= '0' && ch <= '9':
			return uint32(ch), nil
		}
	}

	if strings.HasPrefix(key, "f") {
		if n, err := strconv.Atoi(strings.TrimPrefix(key, "f")); err == nil && n >= 1 && n <= 24 {
			return 0x70 + uint32(n-1), nil
		}
	}

	named := map[string]uint32{
		"esc":       0x1B,
		"escape":    0x1B,
		"space":     0x20,
		"enter":     0x0D,
		"return":    0x0D,
		"tab":       0x09,
		"backspace": 0x08,
		"insert":    0x2D,
		"delete":    0x2E,
		"home":      0x24,
		"end":       0x23,
		"pageup":    0x21,
		"pagedown":  0x22,
		"left":      0x25,
		"up":        0x26,
		"right":     0x27,
		"down":      0x28,
	}
	if vk, ok := named[key]; ok {
		return vk, nil
	}
	return 0, fmt.Errorf("unsupported key %q", key)
}
