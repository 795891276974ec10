//go:build windows

package hotkey

import (
	"fmt"
	"log/slog"
	"runtime"
	"syscall"
	"time"
	"unsafe"
)

const wmHotkey = 0x0312

type binding struct {
	id     uintptr
	action Action
	spec   string
	mod    uint32
	vk     uint32
}

// Listen registers the bindings system-wide and dispatches presses to
// handler from the listener goroutine. An empty cancel spec leaves cancel
// unbound. The handler must return quickly.
func Listen(toggleSpec, cancelSpec string, handler func(Action), logger *slog.Logger) error {
	bindings := []binding{{id: 1, action: ActionToggle, spec: toggleSpec}}
	if cancelSpec != "" {
		bindings = append(bindings, binding{id: 2, action: ActionCancel, spec: cancelSpec})
	}

	for i := range bindings {
		mod, vk, err := parseHotkey(bindings[i].spec)
		if err != nil {
			return fmt.Errorf("invalid hotkey %q: %w", bindings[i].spec, err)
		}
		bindings[i].mod = mod
		bindings[i].vk = vk
	}

	errCh := make(chan error, 1)

	// RegisterHotKey and GetMessageW must run on the same locked thread.
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		user32 := syscall.NewLazyDLL("user32.dll")
		procRegisterHotKey := user32.NewProc("RegisterHotKey")
		procUnregisterHotKey := user32.NewProc("UnregisterHotKey")
		procGetMessageW := user32.NewProc("GetMessageW")

		for i, b := range bindings {
			r, _, _ := procRegisterHotKey.Call(0, b.id, uintptr(b.mod), uintptr(b.vk))
			if r == 0 {
				for _, prev := range bindings[:i] {
					procUnregisterHotKey.Call(0, prev.id)
				}
				errCh <- fmt.Errorf("RegisterHotKey failed for %q", b.spec)
				return
			}
		}

		logger.Info("hotkeys registered", "toggle", toggleSpec, "cancel", cancelSpec)
		errCh <- nil

		var msg struct {
			Hwnd    uintptr
			Message uint32
			WParam  uintptr
			LParam  uintptr
			Time    uint32
			PtX     int32
			PtY     int32
		}
		for {
			ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
			if int32(ret) == -1 {
				logger.Error("hotkey message loop failed")
				return
			}
			if ret == 0 {
				return
			}
			if msg.Message != wmHotkey {
				continue
			}
			for _, b := range bindings {
				if b.id == msg.WParam {
					handler(b.action)
					break
				}
			}
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		return fmt.Errorf("timeout registering hotkeys")
	}
}
