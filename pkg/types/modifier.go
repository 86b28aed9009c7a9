package types

import (
	"fmt"
	"math/bits"
	"strings"

	"fyne.io/fyne/v2"
	"github.com/gobwas/glob"

	"kbmod/internal/errors"
)

// Modifier is a single keyboard modifier bit flag. The values match the
// RegisterHotKey modifier constants so a Bitmask can be handed to the
// Windows API without translation.
type Modifier uint32

// Modifier values
const (
	ModNull    Modifier = 0
	ModAlt     Modifier = 0x1
	ModControl Modifier = 0x2
	ModShift   Modifier = 0x4
	ModWin     Modifier = 0x8
)

// AllModifiers lists every real modifier in canonical order.
var AllModifiers = []Modifier{ModAlt, ModControl, ModShift, ModWin}

var modifierNames = map[Modifier]struct {
	full  string
	short string
}{
	ModAlt:     {"Alt", "Alt"},
	ModControl: {"Control", "Ctrl"},
	ModShift:   {"Shift", "Shift"},
	ModWin:     {"Win", "Win"},
}

var modifierAliases = map[string]Modifier{
	"alt":     ModAlt,
	"control": ModControl,
	"ctrl":    ModControl,
	"ctl":     ModControl,
	"shift":   ModShift,
	"win":     ModWin,
	"windows": ModWin,
	"meta":    ModWin,
	"super":   ModWin,
	"cmd":     ModWin,
}

// Name returns the display name of the modifier, optionally abbreviated.
func (m Modifier) Name(abbreviated bool) string {
	n, ok := modifierNames[m]
	if !ok {
		if m == ModNull {
			return "None"
		}
		return fmt.Sprintf("Modifier(0x%x)", uint32(m))
	}
	if abbreviated {
		return n.short
	}
	return n.full
}

// String returns the canonical, non-abbreviated name.
func (m Modifier) String() string {
	return m.Name(false)
}

// IsValid reports whether m is exactly one known modifier.
func (m Modifier) IsValid() bool {
	_, ok := modifierNames[m]
	return ok
}

// ParseModifier is the inverse of Name. It returns ModNull for anything it
// does not recognise.
func ParseModifier(s string) Modifier {
	if m, ok := modifierAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m
	}
	return ModNull
}

// Bitmask is the union of zero or more modifiers.
type Bitmask uint32

// knownBits covers every bit of AllModifiers
const knownBits = Bitmask(ModAlt | ModControl | ModShift | ModWin)

// Has reports whether the modifier's bit is set. ModNull is never set.
func (b Bitmask) Has(m Modifier) bool {
	return m != ModNull && b&Bitmask(m) != 0
}

// With returns b with m added.
func (b Bitmask) With(m Modifier) Bitmask {
	return b | Bitmask(m)
}

// Without returns b with m cleared.
func (b Bitmask) Without(m Modifier) Bitmask {
	return b &^ Bitmask(m)
}

// Modifiers returns the set modifiers in canonical order.
func (b Bitmask) Modifiers() []Modifier {
	mods := make([]Modifier, 0, bits.OnesCount32(uint32(b&knownBits)))
	for _, m := range AllModifiers {
		if b.Has(m) {
			mods = append(mods, m)
		}
	}
	return mods
}

// Count returns the number of known modifiers set in b.
func (b Bitmask) Count() int {
	return bits.OnesCount32(uint32(b & knownBits))
}

// Unknown returns the bits of b that do not belong to any modifier.
func (b Bitmask) Unknown() Bitmask {
	return b &^ knownBits
}

// Format joins the modifier names with "+".
func (b Bitmask) Format(abbreviated bool) string {
	mods := b.Modifiers()
	if len(mods) == 0 {
		return "None"
	}
	names := make([]string, len(mods))
	for i, m := range mods {
		names[i] = m.Name(abbreviated)
	}
	return strings.Join(names, "+")
}

func (b Bitmask) String() string {
	return b.Format(false)
}

// ParseBitmask parses strings like "ctrl+shift", "Alt, Win" or "none".
func ParseBitmask(s string) (Bitmask, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == ',' || r == ' ' || r == '\t'
	})

	var mask Bitmask
	for _, f := range fields {
		if strings.EqualFold(f, "none") {
			continue
		}
		m := ParseModifier(f)
		if m == ModNull {
			return 0, errors.NewModifierError("unknown modifier", f, errors.InvalidModifier, nil)
		}
		mask = mask.With(m)
	}
	return mask, nil
}

// MatchModifiers returns every modifier whose full or abbreviated name
// matches the glob pattern, case-insensitively.
func MatchModifiers(pattern string) (Bitmask, error) {
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return 0, errors.NewModifierError("invalid modifier pattern", pattern, errors.InvalidModifier, err)
	}

	var mask Bitmask
	for _, m := range AllModifiers {
		if g.Match(strings.ToLower(m.Name(false))) || g.Match(strings.ToLower(m.Name(true))) {
			mask = mask.With(m)
		}
	}
	return mask, nil
}

// FyneModifier converts the bitmask to fyne's modifier set. Win maps to Super.
func (b Bitmask) FyneModifier() fyne.KeyModifier {
	var km fyne.KeyModifier
	if b.Has(ModShift) {
		km |= fyne.KeyModifierShift
	}
	if b.Has(ModControl) {
		km |= fyne.KeyModifierControl
	}
	if b.Has(ModAlt) {
		km |= fyne.KeyModifierAlt
	}
	if b.Has(ModWin) {
		km |= fyne.KeyModifierSuper
	}
	return km
}

// FromFyneModifier is the inverse of Bitmask.FyneModifier.
func FromFyneModifier(km fyne.KeyModifier) Bitmask {
	var b Bitmask
	if km&fyne.KeyModifierShift != 0 {
		b = b.With(ModShift)
	}
	if km&fyne.KeyModifierControl != 0 {
		b = b.With(ModControl)
	}
	if km&fyne.KeyModifierAlt != 0 {
		b = b.With(ModAlt)
	}
	if km&fyne.KeyModifierSuper != 0 {
		b = b.With(ModWin)
	}
	return b
}
