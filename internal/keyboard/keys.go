package keyboard

// KeyID is a logical key identifier. Windows virtual-key numbering is used
// on every platform; other backends translate into it.
type KeyID uint32

// Virtual-key codes used by the translator, the tracker and the default
// configuration.
const (
	VKBack      KeyID = 0x08
	VKTab       KeyID = 0x09
	VKClear     KeyID = 0x0C
	VKReturn    KeyID = 0x0D
	VKShift     KeyID = 0x10
	VKControl   KeyID = 0x11
	VKMenu      KeyID = 0x12
	VKPause     KeyID = 0x13
	VKCapital   KeyID = 0x14
	VKEscape    KeyID = 0x1B
	VKSpace     KeyID = 0x20
	VKPrior     KeyID = 0x21
	VKNext      KeyID = 0x22
	VKEnd       KeyID = 0x23
	VKHome      KeyID = 0x24
	VKLeft      KeyID = 0x25
	VKUp        KeyID = 0x26
	VKRight     KeyID = 0x27
	VKDown      KeyID = 0x28
	VKSnapshot  KeyID = 0x2C
	VKInsert    KeyID = 0x2D
	VKDelete    KeyID = 0x2E
	VK0         KeyID = 0x30
	VK9         KeyID = 0x39
	VKA         KeyID = 0x41
	VKZ         KeyID = 0x5A
	VKLWin      KeyID = 0x5B
	VKRWin      KeyID = 0x5C
	VKApps      KeyID = 0x5D
	VKNumpad0   KeyID = 0x60
	VKNumpad9   KeyID = 0x69
	VKMultiply  KeyID = 0x6A
	VKAdd       KeyID = 0x6B
	VKSeparator KeyID = 0x6C
	VKSubtract  KeyID = 0x6D
	VKDecimal   KeyID = 0x6E
	VKDivide    KeyID = 0x6F
	VKF1        KeyID = 0x70
	VKF24       KeyID = 0x87
	VKNumLock   KeyID = 0x90
	VKScroll    KeyID = 0x91
	VKLShift    KeyID = 0xA0
	VKRShift    KeyID = 0xA1
	VKLControl  KeyID = 0xA2
	VKRControl  KeyID = 0xA3
	VKLMenu     KeyID = 0xA4
	VKRMenu     KeyID = 0xA5

	VKVolumeMute     KeyID = 0xAD
	VKVolumeDown     KeyID = 0xAE
	VKVolumeUp       KeyID = 0xAF
	VKMediaNext      KeyID = 0xB0
	VKMediaPrev      KeyID = 0xB1
	VKMediaStop      KeyID = 0xB2
	VKMediaPlayPause KeyID = 0xB3

	VKOEM1      KeyID = 0xBA // ;:
	VKOEMPlus   KeyID = 0xBB // =+
	VKOEMComma  KeyID = 0xBC // ,<
	VKOEMMinus  KeyID = 0xBD // -_
	VKOEMPeriod KeyID = 0xBE // .>
	VKOEM2      KeyID = 0xBF // /?
	VKOEM3      KeyID = 0xC0 // `~
	VKOEM4      KeyID = 0xDB // [{
	VKOEM5      KeyID = 0xDC // \|
	VKOEM6      KeyID = 0xDD // ]}
	VKOEM7      KeyID = 0xDE // '"
	VKOEM102    KeyID = 0xE2 // \| on ISO keyboards

	// VKFn has no hardware meaning on Windows; it is the default id of the
	// secondary modifier key.
	VKFn KeyID = 0xFF
)

// symbolic holds the VK_ identifiers (without the prefix) of every key the
// translator can name.
var symbolic = map[KeyID]string{
	VKBack:      "BACK",
	VKTab:       "TAB",
	VKClear:     "CLEAR",
	VKReturn:    "RETURN",
	VKShift:     "SHIFT",
	VKControl:   "CONTROL",
	VKMenu:      "MENU",
	VKPause:     "PAUSE",
	VKCapital:   "CAPITAL",
	VKEscape:    "ESCAPE",
	VKSpace:     "SPACE",
	VKPrior:     "PRIOR",
	VKNext:      "NEXT",
	VKEnd:       "END",
	VKHome:      "HOME",
	VKLeft:      "LEFT",
	VKUp:        "UP",
	VKRight:     "RIGHT",
	VKDown:      "DOWN",
	VKSnapshot:  "SNAPSHOT",
	VKInsert:    "INSERT",
	VKDelete:    "DELETE",
	VKLWin:      "LWIN",
	VKRWin:      "RWIN",
	VKApps:      "APPS",
	VKMultiply:  "MULTIPLY",
	VKAdd:       "ADD",
	VKSeparator: "SEPARATOR",
	VKSubtract:  "SUBTRACT",
	VKDecimal:   "DECIMAL",
	VKDivide:    "DIVIDE",
	VKNumLock:   "NUMLOCK",
	VKScroll:    "SCROLL",
	VKLShift:    "LSHIFT",
	VKRShift:    "RSHIFT",
	VKLControl:  "LCONTROL",
	VKRControl:  "RCONTROL",
	VKLMenu:     "LMENU",
	VKRMenu:     "RMENU",

	VKVolumeMute:     "VOLUME_MUTE",
	VKVolumeDown:     "VOLUME_DOWN",
	VKVolumeUp:       "VOLUME_UP",
	VKMediaNext:      "MEDIA_NEXT_TRACK",
	VKMediaPrev:      "MEDIA_PREV_TRACK",
	VKMediaStop:      "MEDIA_STOP",
	VKMediaPlayPause: "MEDIA_PLAY_PAUSE",

	VKOEM1:      "OEM_1",
	VKOEMPlus:   "OEM_PLUS",
	VKOEMComma:  "OEM_COMMA",
	VKOEMMinus:  "OEM_MINUS",
	VKOEMPeriod: "OEM_PERIOD",
	VKOEM2:      "OEM_2",
	VKOEM3:      "OEM_3",
	VKOEM4:      "OEM_4",
	VKOEM5:      "OEM_5",
	VKOEM6:      "OEM_6",
	VKOEM7:      "OEM_7",
	VKOEM102:    "OEM_102",
	VKFn:        "FN",
}

func init() {
	for k := VK0; k <= VK9; k++ {
		symbolic[k] = string(rune('0' + k - VK0))
	}
	for k := VKA; k <= VKZ; k++ {
		symbolic[k] = string(rune('A' + k - VKA))
	}
	for k := VKNumpad0; k <= VKNumpad9; k++ {
		symbolic[k] = "NUMPAD" + string(rune('0'+k-VKNumpad0))
	}
	for k := VKF1; k <= VKF24; k++ {
		n := int(k-VKF1) + 1
		if n < 10 {
			symbolic[k] = "F" + string(rune('0'+n))
		} else {
			symbolic[k] = "F" + string(rune('0'+n/10)) + string(rune('0'+n%10))
		}
	}
	buildNames()
}

// Symbol returns the VK_ identifier of key without the prefix, or "" when
// the key is unknown.
func Symbol(key KeyID) string {
	return symbolic[key]
}
