//go:build windows || linux

package desktop

import "github.com/micmonay/keybd_event"

var (
	codeBackspace  = keybd_event.VK_BACKSPACE
	codeLeft       = keybd_event.VK_LEFT
	codeScrollLock = keybd_event.VK_SCROLLLOCK
)
