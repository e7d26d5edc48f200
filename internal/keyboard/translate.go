package keyboard

import "strings"

// shiftedDigits is indexed by digit value. The symbol row is layout data,
// not an offset from the digit.
var shiftedDigits = [10]rune{')', '!', '@', '#', '$', '%', '^', '&', '*', '('}

// oemChars maps punctuation keys to their unshifted and shifted symbols.
var oemChars = map[KeyID][2]rune{
	VKOEM1:      {';', ':'},
	VKOEMPlus:   {'=', '+'},
	VKOEMComma:  {',', '<'},
	VKOEMMinus:  {'-', '_'},
	VKOEMPeriod: {'.', '>'},
	VKOEM2:      {'/', '?'},
	VKOEM3:      {'`', '~'},
	VKOEM4:      {'[', '{'},
	VKOEM5:      {'\\', '|'},
	VKOEM6:      {']', '}'},
	VKOEM7:      {'\'', '"'},
	VKOEM102:    {'\\', '|'},
}

var numpadChars = map[KeyID]rune{
	VKMultiply: '*',
	VKAdd:      '+',
	VKSubtract: '-',
	VKDecimal:  '.',
	VKDivide:   '/',
}

// Translate maps a key and the shift/caps state to the character it types
// and a display name. ok is false for keys that type nothing; name is empty
// for keys the translator does not know.
func Translate(key KeyID, shift, caps bool) (char rune, ok bool, name string) {
	switch {
	case key >= VK0 && key <= VK9:
		d := rune(key - VK0)
		if shift {
			char = shiftedDigits[d]
		} else {
			char = '0' + d
		}
		return char, true, string(char)
	case key >= VKA && key <= VKZ:
		char = rune(key)
		if shift == caps {
			char += 'a' - 'A'
		}
		return char, true, string(char)
	case key >= VKNumpad0 && key <= VKNumpad9:
		char = '0' + rune(key-VKNumpad0)
		return char, true, titleName(symbolic[key])
	case key == VKSpace:
		return ' ', true, "Space"
	}

	if pair, found := oemChars[key]; found {
		char = pair[0]
		if shift {
			char = pair[1]
		}
		return char, true, string(char)
	}
	if c, found := numpadChars[key]; found {
		return c, true, titleName(symbolic[key])
	}
	return 0, false, titleName(symbolic[key])
}

// titleName turns "VOLUME_UP" into "Volume_Up".
func titleName(sym string) string {
	if sym == "" {
		return ""
	}
	parts := strings.Split(sym, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, "_")
}
