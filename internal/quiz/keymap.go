package quiz

import (
	"fmt"
	"strings"
	"unicode"

	"charm.land/bubbles/v2/key"
)

// OptionKeyCount is the number of letter keys bound to option ordinals.
const OptionKeyCount = 4

// DefaultOptionKeys binds a, b, c, d to ordinals 0-3.
const DefaultOptionKeys = "abcd"

// KeyMap routes key presses to option ordinals and cursor actions. Option
// keys match case-insensitively.
type KeyMap struct {
	Options [OptionKeyCount]key.Binding
	Up      key.Binding
	Down    key.Binding
	Submit  key.Binding
	Quit    key.Binding

	letters [OptionKeyCount]rune
}

// DefaultKeyMap returns the a/b/c/d key map.
func DefaultKeyMap() KeyMap {
	km, err := NewKeyMap(DefaultOptionKeys)
	if err != nil {
		panic(err)
	}
	return km
}

// NewKeyMap builds a key map from exactly four distinct letters, in ordinal
// order (e.g. "asdf").
func NewKeyMap(letters string) (KeyMap, error) {
	runes := []rune(strings.ToLower(strings.TrimSpace(letters)))
	if len(runes) != OptionKeyCount {
		return KeyMap{}, fmt.Errorf("option keys %q: need exactly %d letters", letters, OptionKeyCount)
	}

	var km KeyMap
	seen := make(map[rune]bool, OptionKeyCount)
	for i, r := range runes {
		if !unicode.IsLetter(r) {
			return KeyMap{}, fmt.Errorf("option keys %q: %q is not a letter", letters, r)
		}
		if seen[r] {
			return KeyMap{}, fmt.Errorf("option keys %q: %q repeated", letters, r)
		}
		seen[r] = true
		km.letters[i] = r

		lower := string(r)
		upper := string(unicode.ToUpper(r))
		km.Options[i] = key.NewBinding(
			key.WithKeys(lower, upper),
			key.WithHelp(upper, fmt.Sprintf("option %d", i+1)),
		)
	}

	up := []string{"up"}
	if !seen['k'] {
		up = append(up, "k")
	}
	down := []string{"down"}
	if !seen['j'] {
		down = append(down, "j")
	}

	km.Up = key.NewBinding(key.WithKeys(up...), key.WithHelp("↑", "prev"))
	km.Down = key.NewBinding(key.WithKeys(down...), key.WithHelp("↓", "next"))
	km.Submit = key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "answer"))
	km.Quit = key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "quit"))
	return km, nil
}

// Ordinal returns the option ordinal bound to k, if any.
func (km KeyMap) Ordinal(k fmt.Stringer) (int, bool) {
	for i, b := range km.Options {
		if key.Matches(k, b) {
			return i, true
		}
	}
	return -1, false
}

// Route returns the ordinal for k when an option exists at that position
// among optionCount rendered options.
func (km KeyMap) Route(k fmt.Stringer, optionCount int) (int, bool) {
	i, ok := km.Ordinal(k)
	if !ok || i >= optionCount {
		return -1, false
	}
	return i, true
}

// Label returns the display label for the option at ordinal, or "" when no
// key is bound to it.
func (km KeyMap) Label(ordinal int) string {
	if ordinal < 0 || ordinal >= OptionKeyCount || km.letters[ordinal] == 0 {
		return ""
	}
	return string(unicode.ToUpper(km.letters[ordinal]))
}

// Letters returns the bound letters in ordinal order.
func (km KeyMap) Letters() string {
	return string(km.letters[:])
}

// IsZero reports whether km is the zero KeyMap, with no keys bound.
func (km KeyMap) IsZero() bool {
	return km.letters == [OptionKeyCount]rune{}
}
