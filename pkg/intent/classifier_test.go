package intent

import (
	"testing"

	"telar-chat-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	assert.Equal(t, "grafica area nandu", Canonicalize("Gráfica ÁREA Ñandú"))
	assert.Equal(t, "llevame", Canonicalize("LLÉVAME"))
	assert.Equal(t, "", Canonicalize(""))
}

func TestResolveDestination(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"inventario", "llévame a inventario", "/dashboard/inventory"},
		{"english key", "open inventory please", "/dashboard/inventory"},
		{"accent optional", "abre la configuracion", "/dashboard/settings"},
		{"accented", "Abre la Configuración", "/dashboard/settings"},
		{"analytics", "quiero ver analíticas", "/dashboard/analytics"},
		{"upload", "upload de archivos", "/dashboard/upload"},
		{"declaration order", "inicio o ajustes", "/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest, ok := ResolveDestination(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, dest.Path)
			assert.Equal(t, 1.0, dest.Confidence)
		})
	}

	_, ok := ResolveDestination("genera la gráfica de barras")
	assert.False(t, ok)
}

func TestClassify_NoKeywordIsChat(t *testing.T) {
	for _, text := range []string{"", "   ", "xyz qwerty", "me gusta el café"} {
		got := Classify(text)
		assert.Equal(t, models.IntentChat, got.Type, text)
		assert.Equal(t, 1.0, got.Confidence, text)
		assert.Nil(t, got.Data, text)
	}
}

func TestClassify_BelowThresholdIsChat(t *testing.T) {
	// "ayuda" 単体は HELP で 1/5 となり閾値を下回る
	assert.InDelta(t, 0.2, Score("ayuda")[models.IntentHelp], 1e-9)
	got := Classify("ayuda")
	assert.Equal(t, models.IntentChat, got.Type)
	assert.Equal(t, 1.0, got.Confidence)
}

func TestClassify_NavigationShortCircuit(t *testing.T) {
	got := Classify("llévame a la página de inventario")
	assert.Equal(t, models.IntentNavigation, got.Type)
	assert.Equal(t, 1.0, got.Confidence)
	require.NotNil(t, got.Data)
	assert.Equal(t, "/dashboard/inventory", got.Data.Path)
}

func TestClassify_WeightedCategories(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantType   models.IntentType
		wantScore  float64
		assertData func(t *testing.T, d *models.IntentData)
	}{
		{
			name:      "chart with kind",
			text:      "gráfica de barras, pastel o radar",
			wantType:  models.IntentChart,
			wantScore: (0.8/4 + 3.0/6) / 2,
			assertData: func(t *testing.T, d *models.IntentData) {
				assert.Equal(t, models.ChartBar, d.ChartType)
			},
		},
		{
			name:      "platform data with report type",
			text:      "ventas, stock, productos y categorías",
			wantType:  models.IntentPlatformData,
			wantScore: 0.5,
			assertData: func(t *testing.T, d *models.IntentData) {
				assert.Equal(t, "sales", d.ReportType)
			},
		},
		{
			name:      "filter",
			text:      "filtrar y buscar",
			wantType:  models.IntentFilter,
			wantScore: 2.0 / 3 * 0.7,
			assertData: func(t *testing.T, d *models.IntentData) {
				assert.Equal(t, "filtrar y buscar", d.Filter["query"])
			},
		},
		{
			name:      "help",
			text:      "ayuda, ¿cómo funciona?",
			wantType:  models.IntentHelp,
			wantScore: 0.4,
		},
		{
			name:      "unaccented keywords",
			text:      "grafica de barras, pastel o radar",
			wantType:  models.IntentChart,
			wantScore: (0.8/4 + 3.0/6) / 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			assert.Equal(t, tt.wantType, got.Type)
			assert.InDelta(t, tt.wantScore, got.Confidence, 1e-9)
			require.NotNil(t, got.Data)
			if tt.assertData != nil {
				tt.assertData(t, got.Data)
			}
		})
	}
}

func TestClassify_ExtractsDates(t *testing.T) {
	got := Classify("ventas, stock, productos y categorías entre 2025-11-03 y 2025-11-05")
	require.Equal(t, models.IntentPlatformData, got.Type)
	require.NotNil(t, got.Data.Dates)
	assert.Equal(t, "2025-11-03", got.Data.Dates.Start)
	assert.Equal(t, "2025-11-05", got.Data.Dates.End)
}

func TestChartKindOf(t *testing.T) {
	tests := map[string]models.ChartKind{
		"gráfica de líneas": models.ChartLine,
		"pie chart":         models.ChartPie,
		"gráfica de pastel": models.ChartPie,
		"gráfica de área":   models.ChartArea,
		"radar":             models.ChartRadar,
		"barras por región": models.ChartBar,
		"GRÁFICA DE BARRAS": models.ChartBar,
	}
	for text, want := range tests {
		got, ok := ChartKindOf(text)
		assert.True(t, ok, text)
		assert.Equal(t, want, got, text)
	}
	_, ok := ChartKindOf("hola")
	assert.False(t, ok)
}

func TestReportTypeOf(t *testing.T) {
	assert.Equal(t, "sales", ReportTypeOf("reporte de ventas"))
	assert.Equal(t, "inventory", ReportTypeOf("reporte del inventario"))
	assert.Equal(t, "inventory", ReportTypeOf("INVENTARIO y ventas"))
	assert.Equal(t, "metrics", ReportTypeOf("las métricas del mes"))
	assert.Equal(t, "", ReportTypeOf("reporte"))
}

func TestVocabulary(t *testing.T) {
	assert.True(t, MentionsProduct("camisa XL"))
	assert.True(t, MentionsProduct("Pantalón para hombre"))
	assert.False(t, MentionsProduct("hola"))

	assert.True(t, MentionsChart("genera la gráfica de barras"))
	assert.True(t, MentionsChart("bar chart"))
	assert.False(t, MentionsChart("camisa XL"))

	assert.True(t, AsksForHelp("ayuda"))
	assert.True(t, AsksForHelp(" ? "))
	assert.False(t, AsksForHelp("¿hola?"))

	assert.True(t, IsGreeting("Hola!"))
	assert.True(t, IsGreeting("hey, qué tal"))
	assert.False(t, IsGreeting("this is archived"))
}
