//go:build windows

package hook

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/taglme/macrokeys/internal/keyboard"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
	procGetKeyState         = user32.NewProc("GetKeyState")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procGetClassNameW       = user32.NewProc("GetClassNameW")
)

const (
	whKeyboardLL = 13
	hcAction     = 0
	wmKeyUp      = 0x0101
	wmSysKeyUp   = 0x0105
	wmQuit       = 0x0012
)

type kbdllhookstruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// Only one low-level hook is live per process; the callback reaches it
// through this pointer.
var (
	active       atomic.Pointer[Filter]
	callbackOnce sync.Once
	callback     uintptr
)

func hookProc(nCode int, wParam, lParam uintptr) uintptr {
	if nCode == hcAction {
		if f := active.Load(); f != nil {
			kb := (*kbdllhookstruct)(unsafe.Pointer(lParam))
			raw := keyboard.RawEvent{
				Key:      keyboard.KeyID(kb.VkCode),
				ScanCode: kb.ScanCode,
				Flags:    keyboard.Flags(kb.Flags),
				OSTime:   kb.Time,
			}
			if wParam == wmKeyUp || wParam == wmSysKeyUp {
				raw.Transition = keyboard.Up
			}
			if (*f)(raw) {
				return 1
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

func install(filter Filter, opts Options) (*Handle, error) {
	if !active.CompareAndSwap(nil, &filter) {
		return nil, fmt.Errorf("%w: a hook is already installed", ErrInstall)
	}
	callbackOnce.Do(func() { callback = windows.NewCallback(hookProc) })

	h := newHandle(opts.CloseTimeout)
	ready := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(h.done)
		defer active.Store(nil)

		tid := windows.GetCurrentThreadId()
		hhk, _, err := procSetWindowsHookExW.Call(whKeyboardLL, callback, 0, 0)
		if hhk == 0 {
			ready <- fmt.Errorf("%w: SetWindowsHookExW: %v", ErrInstall, err)
			return
		}
		h.stop = func() {
			procPostThreadMessageW.Call(uintptr(tid), wmQuit, 0, 0)
		}
		ready <- nil
		opts.Logger.Info("[hook] low-level keyboard hook installed", "thread", tid)

		var m msg
		for {
			r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if int32(r) <= 0 {
				break
			}
		}
		procUnhookWindowsHookEx.Call(hhk)
		opts.Logger.Info("[hook] low-level keyboard hook removed")
	}()

	if err := <-ready; err != nil {
		return nil, err
	}
	return h, nil
}

// ForegroundClass returns the window class of the foreground window.
func ForegroundClass() string {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return ""
	}
	buf := make([]uint16, 256)
	n, _, _ := procGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

// InitialLocks reads the toggle state of the lock keys.
func InitialLocks() keyboard.Lock {
	var locks keyboard.Lock
	for vk, l := range map[keyboard.KeyID]keyboard.Lock{
		keyboard.VKCapital: keyboard.CapsLock,
		keyboard.VKScroll:  keyboard.ScrollLock,
		keyboard.VKNumLock: keyboard.NumLock,
	} {
		r, _, _ := procGetKeyState.Call(uintptr(vk))
		if r&1 != 0 {
			locks |= l
		}
	}
	return locks
}

// Suppressing reports whether this backend can swallow keys.
func Suppressing() bool { return true }
