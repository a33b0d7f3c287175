package navigator

type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyEnter
	KeyEsc
	KeyBackspace
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyOther
)

// Key is one input event, independent of the terminal library.
type Key struct {
	Code    KeyCode
	Rune    rune
	Ctrl    bool
	Alt     bool
	Release bool
}

func Rune(r rune) Key { return Key{Code: KeyRune, Rune: r} }

func Ctrl(r rune) Key { return Key{Code: KeyRune, Rune: r, Ctrl: true} }

func Special(code KeyCode) Key { return Key{Code: code} }

// plain reports whether k is an unmodified printable rune.
func (k Key) plain() bool {
	return k.Code == KeyRune && !k.Ctrl && !k.Alt
}

func (k Key) is(r rune) bool {
	return k.plain() && k.Rune == r
}
