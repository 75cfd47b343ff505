// Package style wraps text in ANSI escape sequences for terminal output.
package style

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Token is a single text attribute such as a colour or weight.
type Token int

const (
	Bold Token = iota + 1
	Italic
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
)

// Reset clears every attribute set by previous sequences.
const Reset = "\033[0m"

var sequences = map[Token]string{
	Bold:    "\033[1m",
	Italic:  "\033[3m",
	Red:     "\033[31m",
	Green:   "\033[32m",
	Yellow:  "\033[33m",
	Blue:    "\033[34m",
	Magenta: "\033[35m",
	Cyan:    "\033[36m",
	White:   "\033[37m",
}

var names = map[Token]string{
	Bold:    "bold",
	Italic:  "italic",
	Red:     "red",
	Green:   "green",
	Yellow:  "yellow",
	Blue:    "blue",
	Magenta: "magenta",
	Cyan:    "cyan",
	White:   "white",
}

// Sequence returns the escape sequence that turns the token on.
// Values outside the defined set return an empty string.
func (t Token) Sequence() string {
	return sequences[t]
}

func (t Token) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// ParseToken maps a lowercase name such as "green" or "bold" to its Token.
func ParseToken(name string) (Token, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range names {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown style token: %q", name)
}

// Decorate prefixes text with the start sequence of every token, in order,
// and appends Reset so later output is unaffected.
func Decorate(tokens []Token, text string) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Sequence())
	}
	b.WriteString(text)
	b.WriteString(Reset)
	return b.String()
}

// Mode selects when colour output is produced.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeAlways Mode = "always"
	ModeNever  Mode = "never"
)

// ParseMode validates a colour mode string. An empty string means ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeAlways:
		return ModeAlways, nil
	case ModeNever:
		return ModeNever, nil
	default:
		return "", fmt.Errorf("invalid color mode %q: expected auto, always or never", s)
	}
}

// Styler decorates text when Enabled and passes it through untouched otherwise.
type Styler struct {
	Enabled bool
}

// New returns a Styler for output written to w.
// In ModeAuto colour is enabled only when w is a terminal and NO_COLOR is unset.
func New(w io.Writer, mode Mode) Styler {
	switch mode {
	case ModeAlways:
		return Styler{Enabled: true}
	case ModeNever:
		return Styler{}
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return Styler{}
	}
	f, ok := w.(*os.File)
	if !ok {
		return Styler{}
	}
	fd := f.Fd()
	return Styler{Enabled: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}
}

// Decorate applies tokens to text if the Styler is enabled.
func (s Styler) Decorate(tokens []Token, text string) string {
	if !s.Enabled {
		return text
	}
	return Decorate(tokens, text)
}
