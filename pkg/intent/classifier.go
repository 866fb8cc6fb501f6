// Package intent は外部サービスを使わないローカルの意図解析です。
// 重み付きキーワード分類器とナビゲーション解決を提供します。
package intent

import (
	"regexp"
	"strings"

	"telar-chat-api/pkg/models"
)

// scoreThreshold を超えるカテゴリが無い場合は CHAT（信頼度1.0）になります。
const scoreThreshold = 0.3

type keywordGroup struct {
	words  []string
	weight float64
}

type category struct {
	intent models.IntentType
	groups []keywordGroup
}

// navigationKeys は宣言順に評価され、最初に含まれたキーが採用されます。
var navigationKeys = []struct {
	keyword     string
	destination string
}{
	{"inventario", "inventory"},
	{"inventory", "inventory"},
	{"analytics", "analytics"},
	{"analíticas", "analytics"},
	{"dashboard", "dashboard"},
	{"inicio", "dashboard"},
	{"upload", "upload"},
	{"settings", "settings"},
	{"configuración", "settings"},
	{"ajustes", "settings"},
}

// categories の順序は同点時の優先順位を兼ねます。
// 後続のカテゴリはスコアが厳密に大きい場合のみ採用されるため、同点なら
// NAVIGATION > PLATFORM_DATA > CHART > FILTER > HELP の順になります。
var categories = []category{
	{models.IntentNavigation, []keywordGroup{
		{[]string{"llévame", "ir", "navega", "muestra", "abre"}, 0.7},
		{[]string{"página", "vista", "sección"}, 0.5},
		{navigationWords(), 1.0},
	}},
	{models.IntentPlatformData, []keywordGroup{
		{[]string{"datos", "información", "métricas", "estadísticas"}, 0.6},
		{[]string{"cuánto", "cuántos", "total", "cantidad"}, 0.4},
		{[]string{"ventas", "stock", "productos", "categorías"}, 0.5},
	}},
	{models.IntentChart, []keywordGroup{
		{[]string{"gráfica", "gráfico", "chart", "visualización"}, 0.8},
		{[]string{"barras", "pie", "pastel", "líneas", "radar", "área"}, 1.0},
	}},
	{models.IntentFilter, []keywordGroup{
		{[]string{"filtrar", "buscar", "encontrar"}, 0.7},
		{[]string{"categoría", "tipo", "talla", "marca", "precio", "color"}, 0.5},
	}},
	{models.IntentHelp, []keywordGroup{
		{[]string{"ayuda", "help", "cómo", "qué puedes", "funciones"}, 1.0},
	}},
}

func navigationWords() []string {
	words := make([]string, 0, len(navigationKeys))
	for _, k := range navigationKeys {
		words = append(words, k.keyword)
	}
	return words
}

func init() {
	for i := range navigationKeys {
		navigationKeys[i].keyword = Canonicalize(navigationKeys[i].keyword)
	}
	for _, c := range categories {
		for _, g := range c.groups {
			for i, w := range g.words {
				g.words[i] = Canonicalize(w)
			}
		}
	}
}

// Destination は解決済みの遷移先です。
type Destination struct {
	Name       string  `json:"destination"`
	Path       string  `json:"path"`
	Confidence float64 `json:"confidence"`
}

// ResolveDestination はテキストに含まれる遷移キーワードを探します。
// 重み付き分類器は使いません。
func ResolveDestination(text string) (Destination, bool) {
	canon := Canonicalize(text)
	for _, k := range navigationKeys {
		if strings.Contains(canon, k.keyword) {
			return Destination{
				Name:       k.destination,
				Path:       models.Destinations[k.destination],
				Confidence: 1.0,
			}, true
		}
	}
	return Destination{}, false
}

// Score は各カテゴリの正規化スコアを返します。
// グループごとに matched/len(words)*weight を加算し、ヒットしたグループ数で割ります。
func Score(text string) map[models.IntentType]float64 {
	canon := Canonicalize(text)
	scores := make(map[models.IntentType]float64, len(categories))
	for _, c := range categories {
		scores[c.intent] = categoryScore(canon, c)
	}
	return scores
}

func categoryScore(canon string, c category) float64 {
	var total float64
	hitGroups := 0
	for _, g := range c.groups {
		matched := 0
		for _, w := range g.words {
			if strings.Contains(canon, w) {
				matched++
			}
		}
		if matched > 0 {
			total += float64(matched) / float64(len(g.words)) * g.weight
			hitGroups++
		}
	}
	if hitGroups == 0 {
		return 0
	}
	return total / float64(hitGroups)
}

// Classify はテキストを Intent に分類します。
// 遷移キーワードが含まれる場合はスコアリングを省略します。
func Classify(text string) models.Intent {
	if strings.TrimSpace(text) == "" {
		return chatIntent()
	}
	if dest, ok := ResolveDestination(text); ok {
		return models.Intent{
			Type:       models.IntentNavigation,
			Confidence: dest.Confidence,
			Data:       &models.IntentData{Path: dest.Path},
		}
	}

	canon := Canonicalize(text)
	best := models.IntentChat
	bestScore := 0.0
	for _, c := range categories {
		if s := categoryScore(canon, c); s > bestScore {
			best, bestScore = c.intent, s
		}
	}
	if bestScore <= scoreThreshold {
		return chatIntent()
	}

	return models.Intent{
		Type:       best,
		Confidence: bestScore,
		Data:       extract(best, text, canon),
	}
}

func chatIntent() models.Intent {
	return models.Intent{Type: models.IntentChat, Confidence: 1.0}
}

var isoDate = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)

func extract(t models.IntentType, text, canon string) *models.IntentData {
	data := &models.IntentData{}
	switch t {
	case models.IntentChart:
		data.ChartType, _ = ChartKindOf(text)
	case models.IntentPlatformData, models.IntentReport:
		data.ReportType = ReportTypeOf(text)
	case models.IntentFilter:
		data.Filter = map[string]string{"query": strings.TrimSpace(text)}
	}
	if dates := isoDate.FindAllString(canon, 2); len(dates) > 0 {
		data.Dates = &models.DateRange{Start: dates[0]}
		if len(dates) > 1 {
			data.Dates.End = dates[1]
		}
	}
	return data
}

// ChartKindOf はテキストで指定されたグラフ種類を返します。
func ChartKindOf(text string) (models.ChartKind, bool) {
	canon := Canonicalize(text)
	switch {
	case strings.Contains(canon, "barra"):
		return models.ChartBar, true
	case strings.Contains(canon, "pie"), strings.Contains(canon, "pastel"):
		return models.ChartPie, true
	case strings.Contains(canon, "linea"):
		return models.ChartLine, true
	case strings.Contains(canon, "area"):
		return models.ChartArea, true
	case strings.Contains(canon, "radar"):
		return models.ChartRadar, true
	}
	return "", false
}

// ReportTypeOf はテキストが示すレポート種別を返します。
func ReportTypeOf(text string) string {
	canon := Canonicalize(text)
	// "inventario" は "venta" を含むため先に判定する
	switch {
	case strings.Contains(canon, "inventario"):
		return "inventory"
	case strings.Contains(canon, "venta"):
		return "sales"
	case strings.Contains(canon, "metrica"):
		return "metrics"
	}
	return ""
}
