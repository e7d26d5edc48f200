package desktop

// macOS virtual key codes. There is no scroll lock key.
var (
	codeBackspace  = 0x33
	codeLeft       = 0x7B
	codeScrollLock = 0
)
