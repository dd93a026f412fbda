package generation

import (
	"strings"
	"unicode"
)

// DefaultTokenSymbol is used when nothing can be derived from a title.
const DefaultTokenSymbol = "TKN"

// GenerateTokenSymbol derives a short ticker from a project title: the
// initials of the first three words, the first word's initial plus two
// letters of the second for two-word titles, or the first three letters
// of a single word.
func GenerateTokenSymbol(title string) string {
	words := strings.Fields(title)
	if len(words) == 0 {
		return DefaultTokenSymbol
	}
	letters := make([][]rune, len(words))
	for i, w := range words {
		letters[i] = []rune(w)
	}

	var symbol []rune
	switch {
	case len(words) >= 3:
		symbol = []rune{letters[0][0], letters[1][0], letters[2][0]}
	case len(words) == 2:
		symbol = append([]rune{letters[0][0]}, prefix(letters[1], 2)...)
	default:
		symbol = prefix(letters[0], 3)
	}
	out := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, string(symbol))
	if out == "" {
		return DefaultTokenSymbol
	}
	return out
}

func prefix(r []rune, n int) []rune {
	if len(r) < n {
		return r
	}
	return r[:n]
}
