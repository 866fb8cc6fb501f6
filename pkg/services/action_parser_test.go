package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"telar-chat-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.Action
	}{
		{
			name: "navigate",
			raw:  `{"action":"navigate","destination":"Inventory","message":"Te llevo"}`,
			want: models.NavigateAction{Destination: "inventory", Message: "Te llevo"},
		},
		{
			name: "navigate to unknown destination",
			raw:  `{"action":"navigate","destination":"checkout","message":"Te llevo"}`,
			want: models.ChatAction{Message: "Te llevo"},
		},
		{
			name: "chart with nested data",
			raw:  `{"action":"grafica","type":"pie","data":{"metric":"revenue","groupBy":"region"},"message":"Aquí"}`,
			want: models.ChartAction{ChartKind: models.ChartPie, Metric: models.MetricRevenue, GroupBy: models.GroupByRegion, Message: "Aquí"},
		},
		{
			name: "chart defaults",
			raw:  `{"action":"grafica","type":"donut"}`,
			want: models.ChartAction{ChartKind: models.ChartBar, Metric: models.MetricSales, GroupBy: models.GroupByCategory},
		},
		{
			name: "report",
			raw:  `{"action":"reporte","type":"Sales","filters":{"start":"2025-11-05"},"message":"Resumen"}`,
			want: models.ReportAction{ReportType: "sales", Filters: map[string]any{"start": "2025-11-05"}, Message: "Resumen"},
		},
		{
			name: "report without type",
			raw:  `{"action":"report","message":"Resumen"}`,
			want: models.ReportAction{ReportType: "metrics", Message: "Resumen"},
		},
		{
			name: "filter",
			raw:  `{"action":"filter","category":"POLOS","message":"Filtrando"}`,
			want: models.FilterAction{Category: "POLOS", Message: "Filtrando"},
		},
		{
			name: "chat",
			raw:  `{"action":"chat","response":"Respuesta larga","message":"corta"}`,
			want: models.ChatAction{Reply: "Respuesta larga", Message: "corta"},
		},
		{
			name: "unknown action",
			raw:  `{"action":"dance","message":"?"}`,
			want: models.ChatAction{Message: "?"},
		},
		{
			name: "code fence and prose",
			raw:  "```json\n{\"action\":\"navigate\",\"destination\":\"analytics\",\"message\":\"ok\"}\n```",
			want: models.NavigateAction{Destination: "analytics", Message: "ok"},
		},
		{
			name: "leading prose",
			raw:  "Claro: {\"action\":\"filter\",\"category\":\"VESTIDOS\",\"message\":\"ok\"} espero ayude",
			want: models.FilterAction{Category: "VESTIDOS", Message: "ok"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAction(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAction_Failures(t *testing.T) {
	for _, raw := range []string{"", "hola, ¿en qué te ayudo?", "{no es json}", "{}"} {
		_, err := ParseAction(raw)
		assert.Error(t, err, raw)
	}
}

func TestFallbackChat(t *testing.T) {
	short := FallbackChat("  hola  ")
	assert.Equal(t, "hola", short.Reply)
	assert.Equal(t, "hola", short.Message)

	long := strings.Repeat("ñ", 150)
	got := FallbackChat(long)
	assert.Equal(t, long, got.Reply)
	assert.Equal(t, 103, utf8.RuneCountInString(got.Message))
	assert.True(t, strings.HasSuffix(got.Message, "..."))
	assert.Equal(t, long, got.Text())
}
