package services

import (
	"context"
	"fmt"
	"strings"

	config "telar-chat-api/configs"
	"telar-chat-api/pkg/intent"
	"telar-chat-api/pkg/models"
)

// LocalInterpreter は外部サービスを使わずに分類器と語彙だけでアクションを決定します。
type LocalInterpreter struct {
	prompt *config.AssistantPrompt
}

// NewLocalInterpreter は新しいLocalInterpreterを生成します。
func NewLocalInterpreter(prompt *config.AssistantPrompt) *LocalInterpreter {
	return &LocalInterpreter{prompt: prompt}
}

// Interpret は遷移先の解決、分類器、語彙の順に試します。
func (l *LocalInterpreter) Interpret(_ context.Context, text string) models.Action {
	if dest, ok := intent.ResolveDestination(text); ok {
		return models.NavigateAction{Destination: dest.Name, Message: l.prompt.NavigateReply(dest.Name)}
	}

	in := intent.Classify(text)
	switch in.Type {
	case models.IntentChart:
		return l.chart(text)
	case models.IntentPlatformData, models.IntentReport:
		return l.report(in.Data)
	case models.IntentFilter:
		return l.filter(text)
	case models.IntentHelp:
		return l.chat(l.prompt.Replies.Help)
	}

	// しきい値未満でも単語単位で拾えるものは拾う
	switch {
	case intent.MentionsChart(text):
		return l.chart(text)
	case intent.MentionsProduct(text):
		return l.filter(text)
	case intent.AsksForHelp(text):
		return l.chat(l.prompt.Replies.Help)
	case intent.IsGreeting(text):
		return l.chat(l.prompt.Replies.Greeting)
	}
	return l.chat(l.prompt.Replies.Fallback)
}

func (l *LocalInterpreter) chart(text string) models.ChartAction {
	req := BuildChartRequest(text)
	return models.ChartAction{
		ChartKind: req.Kind,
		Metric:    req.Metric,
		GroupBy:   req.GroupBy,
		Message:   l.prompt.Replies.Chart,
	}
}

func (l *LocalInterpreter) report(data *models.IntentData) models.ReportAction {
	a := models.ReportAction{ReportType: "metrics", Message: l.prompt.Replies.Report}
	if data == nil {
		return a
	}
	if data.ReportType != "" {
		a.ReportType = data.ReportType
	}
	if data.Dates != nil {
		a.Filters = map[string]any{}
		if data.Dates.Start != "" {
			a.Filters["start"] = data.Dates.Start
		}
		if data.Dates.End != "" {
			a.Filters["end"] = data.Dates.End
		}
	}
	return a
}

func (l *LocalInterpreter) filter(text string) models.FilterAction {
	query := strings.TrimSpace(text)
	return models.FilterAction{Category: query, Message: fmt.Sprintf(l.prompt.Replies.Filter, query)}
}

func (l *LocalInterpreter) chat(reply string) models.ChatAction {
	return models.ChatAction{Reply: reply, Message: reply}
}

// Enrich は集計データの要約をメッセージに付け足します。
func (l *LocalInterpreter) Enrich(_ context.Context, action models.Action, data any) models.Action {
	summary := summarize(data)
	if summary == "" {
		return action
	}
	return action.WithMessage(strings.TrimSpace(action.Text() + " " + summary))
}

func summarize(data any) string {
	switch d := data.(type) {
	case *models.ChartData:
		if d.IsEmpty() {
			return "No hay datos para el período solicitado."
		}
		return fmt.Sprintf("%s lidera con %.2f.", d.Labels[0], d.Datasets[0].Values[0])
	case []models.InventoryRecord:
		units := 0
		for _, r := range d {
			units += r.Stock
		}
		return fmt.Sprintf("%d productos con %d unidades en stock.", len(d), units)
	case []models.SalesRecord:
		var total float64
		for _, r := range d {
			total += r.Amount
		}
		return fmt.Sprintf("%d ventas por un total de $%.2f.", len(d), total)
	case *models.BusinessMetrics:
		if d == nil {
			return ""
		}
		s := fmt.Sprintf("Ventas totales: $%.2f, ticket promedio: $%.2f.", d.TotalSales, d.AverageOrderValue)
		if len(d.TopCategories) > 0 {
			s += fmt.Sprintf(" Categoría principal: %s.", d.TopCategories[0].Category)
		}
		return s
	}
	return ""
}
