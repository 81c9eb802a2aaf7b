package input

import "github.com/kamstrup/intmap"

// KeyCode is a host-independent physical key code. Values follow the legacy
// DOM keyCode numbering so every host maps onto the same table.
type KeyCode int

const (
	KeyShift      KeyCode = 16
	KeySpace      KeyCode = 32
	KeyArrowLeft  KeyCode = 37
	KeyArrowUp    KeyCode = 38
	KeyArrowRight KeyCode = 39
	KeyArrowDown  KeyCode = 40
	KeyX          KeyCode = 88
	KeyZ          KeyCode = 90
)

// KeyMap is the fixed physical-key to button table.
type KeyMap struct {
	keys *intmap.Map[KeyCode, Button]
}

// DefaultKeyMap returns the standard layout: Z or Space rotate, X rotates the
// other way, arrows move, Shift holds.
func DefaultKeyMap() *KeyMap {
	km := &KeyMap{keys: intmap.New[KeyCode, Button](8)}
	km.keys.Put(KeyZ, ButtonA)
	km.keys.Put(KeySpace, ButtonA)
	km.keys.Put(KeyX, ButtonB)
	km.keys.Put(KeyArrowUp, ButtonUp)
	km.keys.Put(KeyArrowDown, ButtonDown)
	km.keys.Put(KeyArrowRight, ButtonRight)
	km.keys.Put(KeyArrowLeft, ButtonLeft)
	km.keys.Put(KeyShift, ButtonHold)
	return km
}

// Press returns the button a key-down of code presses.
func (km *KeyMap) Press(code KeyCode) (Button, bool) {
	return km.keys.Get(code)
}

// Release returns the button a key-up of code releases. Z shares the Space
// slot, so either key releases A.
func (km *KeyMap) Release(code KeyCode) (Button, bool) {
	if code == KeyZ {
		code = KeySpace
	}
	return km.keys.Get(code)
}

// Len returns the number of mapped keys.
func (km *KeyMap) Len() int {
	return km.keys.Len()
}
