package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"telar-chat-api/pkg/models"
)

// ErrNoAction は応答に解釈可能な JSON オブジェクトが無い場合です。
var ErrNoAction = errors.New("reply has no action object")

// fallbackMessageRunes はパース失敗時の短いメッセージの最大文字数です。
const fallbackMessageRunes = 100

// wireAction は推論サービスが返す JSON の形です。
// グラフの指標は data の下に入りますが、トップレベルに置かれた場合も受け付けます。
type wireAction struct {
	Action      string `json:"action"`
	Message     string `json:"message"`
	Destination string `json:"destination"`
	Type        string `json:"type"`
	Metric      string `json:"metric"`
	GroupBy     string `json:"groupBy"`
	Data        *struct {
		Metric    string            `json:"metric"`
		GroupBy   string            `json:"groupBy"`
		TimeRange *models.DateRange `json:"timeRange"`
	} `json:"data"`
	ChartOptions *models.ChartOptions `json:"chartOptions"`
	Filters      map[string]any       `json:"filters"`
	Category     string               `json:"category"`
	Response     string               `json:"response"`
}

// ParseAction は推論サービスの応答テキストを Action に変換します。
// コードブロックの囲みや前後の文章は無視します。未知の action は Chat になります。
func ParseAction(raw string) (models.Action, error) {
	body := extractJSON(raw)
	if body == "" {
		return nil, ErrNoAction
	}

	var w wireAction
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return nil, fmt.Errorf("応答のJSONパースに失敗: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(w.Action)) {
	case "navigate":
		dest := strings.ToLower(strings.TrimSpace(w.Destination))
		if _, ok := models.Destinations[dest]; !ok {
			return chatFrom(w), nil
		}
		return models.NavigateAction{Destination: dest, Message: w.Message}, nil

	case "grafica", "chart":
		return chartFrom(w), nil

	case "reporte", "report":
		reportType := strings.ToLower(strings.TrimSpace(w.Type))
		if reportType == "" {
			reportType = "metrics"
		}
		return models.ReportAction{
			ReportType: reportType,
			Filters:    w.Filters,
			Message:    w.Message,
		}, nil

	case "filter":
		return models.FilterAction{Category: w.Category, Filters: w.Filters, Message: w.Message}, nil

	case "chat":
		return chatFrom(w), nil
	}

	if w.Action == "" && w.Message == "" && w.Response == "" {
		return nil, ErrNoAction
	}
	return chatFrom(w), nil
}

func chartFrom(w wireAction) models.ChartAction {
	a := models.ChartAction{
		ChartKind: models.ChartKind(strings.ToLower(w.Type)),
		Metric:    models.Metric(strings.ToLower(w.Metric)),
		GroupBy:   models.GroupBy(w.GroupBy),
		Options:   w.ChartOptions,
		Message:   w.Message,
	}
	if w.Data != nil {
		if w.Data.Metric != "" {
			a.Metric = models.Metric(strings.ToLower(w.Data.Metric))
		}
		if w.Data.GroupBy != "" {
			a.GroupBy = models.GroupBy(w.Data.GroupBy)
		}
		a.TimeRange = w.Data.TimeRange
	}

	// 欠けている、または未知の値は既定値で補う
	if !a.ChartKind.Valid() {
		a.ChartKind = models.ChartBar
	}
	if !a.Metric.Valid() {
		a.Metric = models.MetricSales
	}
	if !a.GroupBy.Valid() {
		a.GroupBy = models.GroupByCategory
	}
	return a
}

func chatFrom(w wireAction) models.ChatAction {
	return models.ChatAction{Reply: w.Response, Message: w.Message}
}

// FallbackChat はパースできなかった応答をそのまま Chat として返します。
func FallbackChat(raw string) models.ChatAction {
	text := strings.TrimSpace(raw)
	msg := text
	if utf8.RuneCountInString(text) > fallbackMessageRunes {
		msg = string([]rune(text)[:fallbackMessageRunes]) + "..."
	}
	return models.ChatAction{Reply: text, Message: msg}
}

// extractJSON はコードブロックを取り除き、最初の '{' から最後の '}' までを返します。
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
