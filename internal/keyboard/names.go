package keyboard

import (
	"fmt"
	"strings"
)

// keyAliases are the configuration names accepted besides the lowercase
// symbolic ids ("volume_up", "f5", "oem_1") and single characters.
var keyAliases = map[string]KeyID{
	"backspace":  VKBack,
	"enter":      VKReturn,
	"esc":        VKEscape,
	"pageup":     VKPrior,
	"pagedown":   VKNext,
	"ins":        VKInsert,
	"del":        VKDelete,
	"prtsc":      VKSnapshot,
	"capslock":   VKCapital,
	"scrolllock": VKScroll,
	"lctrl":      VKLControl,
	"rctrl":      VKRControl,
	"lalt":       VKLMenu,
	"ralt":       VKRMenu,
	"plus":       VKOEMPlus,
	"minus":      VKOEMMinus,
	"comma":      VKOEMComma,
	"period":     VKOEMPeriod,
	"semicolon":  VKOEM1,
	"quote":      VKOEM7,
	"slash":      VKOEM2,
	"backslash":  VKOEM5,
	"grave":      VKOEM3,
	"backquote":  VKOEM3,
	"numpad_add": VKAdd,
	"numpad_sub": VKSubtract,
	"numpad_mul": VKMultiply,
	"numpad_div": VKDivide,
	"fn":         VKFn,
}

var modifierAliases = map[string]Modifier{
	"ctrl":     Ctrl,
	"control":  Ctrl,
	"shift":    Shift,
	"alt":      Alt,
	"win":      Win,
	"super":    Win,
	"cmd":      Win,
	"fn":       Fn,
	"backtick": Backtick,
	"chord":    Backtick,
}

var byName map[string]KeyID

// buildNames runs after the symbolic table is complete.
func buildNames() {
	byName = make(map[string]KeyID, len(symbolic)+len(keyAliases)+len(oemChars)*2)
	for k, sym := range symbolic {
		byName[strings.ToLower(sym)] = k
	}
	for pk, pair := range oemChars {
		// OEM_102 duplicates the backslash pair.
		if pk == VKOEM102 {
			continue
		}
		byName[string(pair[0])] = pk
		byName[string(pair[1])] = pk
	}
	for i, r := range shiftedDigits {
		byName[string(r)] = VK0 + KeyID(i)
	}
	for name, k := range keyAliases {
		byName[name] = k
	}
}

// ParseKey resolves a configuration key name. Names are case-insensitive.
func ParseKey(name string) (KeyID, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return 0, fmt.Errorf("empty key name")
	}
	if k, ok := byName[strings.ToLower(n)]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// ParseModifier resolves a modifier name such as "ctrl" or "backtick".
func ParseModifier(name string) (Modifier, error) {
	m, ok := modifierAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown modifier %q", name)
	}
	return m, nil
}

// ParseChord parses "ctrl+shift+=" into a modifier mask and a key. The last
// token is the key; a trailing "++" names the plus key.
func ParseChord(s string) (Modifier, KeyID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("empty hotkey")
	}
	var keyName string
	var modPart string
	switch {
	case s == "+":
		keyName = "+"
	case strings.HasSuffix(s, "++"):
		keyName = "+"
		modPart = strings.TrimSuffix(s, "++")
	default:
		i := strings.LastIndex(s, "+")
		if i < 0 {
			keyName = s
		} else {
			keyName = s[i+1:]
			modPart = s[:i]
		}
	}

	var mods Modifier
	if modPart != "" {
		for _, tok := range strings.Split(modPart, "+") {
			m, err := ParseModifier(tok)
			if err != nil {
				return 0, 0, fmt.Errorf("hotkey %q: %w", s, err)
			}
			mods |= m
		}
	}
	key, err := ParseKey(keyName)
	if err != nil {
		return 0, 0, fmt.Errorf("hotkey %q: %w", s, err)
	}
	return mods, key, nil
}

// FormatChord is the inverse of ParseChord for display.
func FormatChord(mods Modifier, key KeyID) string {
	name := titleName(symbolic[key])
	if c, ok := oemChars[key]; ok {
		name = string(c[0])
	}
	if name == "" {
		name = fmt.Sprintf("0x%02X", uint32(key))
	}
	if mods == 0 {
		return name
	}
	return mods.String() + "+" + name
}
