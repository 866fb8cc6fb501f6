package intent

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonicalize は小文字化してアクセント記号を除去します。
// キーワード表にも同じ正規化を適用するため "Gráfica" と "grafica" は一致します。
func Canonicalize(s string) string {
	lower := strings.ToLower(s)
	// transform.Chain は状態を持つため呼び出しごとに生成する
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, lower)
	if err != nil {
		return lower
	}
	return out
}

func containsAny(canon string, words []string) bool {
	for _, w := range words {
		if strings.Contains(canon, w) {
			return true
		}
	}
	return false
}

func hasToken(canon string, words []string) bool {
	for _, tok := range strings.FieldsFunc(canon, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		for _, w := range words {
			if tok == w {
				return true
			}
		}
	}
	return false
}
