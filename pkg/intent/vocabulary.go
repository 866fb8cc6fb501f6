package intent

import "strings"

var (
	productWords = canonicalAll("camisa", "pantalon", "pantalón", "vestido", "zapato",
		"accesorio", "xl", "hombre", "mujer", "dress", "shirt", "pants")
	chartWords = canonicalAll("gráfica", "gráfico", "chart", "visualización",
		"circular")
	helpWords     = canonicalAll("ayuda", "help")
	greetingWords = canonicalAll("hola", "hello", "hi", "hey", "buenas")
)

func canonicalAll(words ...string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = Canonicalize(w)
	}
	return out
}

// MentionsProduct は商品種別・サイズ・対象（"camisa XL" など）に触れているかを返します。
func MentionsProduct(text string) bool {
	return containsAny(Canonicalize(text), productWords)
}

// MentionsChart はグラフを求めているかを返します。
func MentionsChart(text string) bool {
	return containsAny(Canonicalize(text), chartWords)
}

// AsksForHelp はヘルプの要求か（"?" 単体を含む）を返します。
func AsksForHelp(text string) bool {
	canon := Canonicalize(text)
	return containsAny(canon, helpWords) || strings.TrimSpace(canon) == "?"
}

// IsGreeting は挨拶を含むかを返します。
func IsGreeting(text string) bool {
	return hasToken(Canonicalize(text), greetingWords)
}
