package services

import (
	"strings"

	"telar-chat-api/pkg/intent"
	"telar-chat-api/pkg/models"
)

// Palette はデータセットの配色です。要素数を超える系列は先頭から循環します。
var Palette = []string{
	"rgba(255, 99, 132, 0.8)",
	"rgba(54, 162, 235, 0.8)",
	"rgba(255, 206, 86, 0.8)",
	"rgba(75, 192, 192, 0.8)",
	"rgba(153, 102, 255, 0.8)",
}

var metricLabels = map[models.Metric]string{
	models.MetricSales:   "Ventas (unidades)",
	models.MetricRevenue: "Ingresos ($)",
	models.MetricStock:   "Stock disponible",
}

var groupLabels = map[models.GroupBy]string{
	models.GroupByCategory: "Categorías",
	models.GroupByRegion:   "Regiones",
	models.GroupByDate:     "Período",
}

// ChartService は自由文からグラフ指定を組み立て、集計済みデータを生成します。
type ChartService struct {
	data *DataService
}

// NewChartService は新しいChartServiceを生成します。
func NewChartService(data *DataService) *ChartService {
	return &ChartService{data: data}
}

// BuildChartRequest はテキストからグラフ種類・指標・集計軸を決定します。
// それぞれ独立に判定し、該当キーワードが無ければ bar / sales / category です。
func BuildChartRequest(text string) models.ChartRequest {
	canon := intent.Canonicalize(text)
	req := models.ChartRequest{
		Kind:    models.ChartBar,
		Metric:  models.MetricSales,
		GroupBy: models.GroupByCategory,
	}

	switch {
	case strings.Contains(canon, "linea"):
		req.Kind = models.ChartLine
	case strings.Contains(canon, "pastel"), strings.Contains(canon, "pie"), strings.Contains(canon, "circular"):
		req.Kind = models.ChartPie
	case strings.Contains(canon, "area"):
		req.Kind = models.ChartArea
	case strings.Contains(canon, "radar"):
		req.Kind = models.ChartRadar
	}

	switch {
	case strings.Contains(canon, "ingreso"), strings.Contains(canon, "revenue"):
		req.Metric = models.MetricRevenue
	case strings.Contains(canon, "stock"), strings.Contains(canon, "inventario"):
		req.Metric = models.MetricStock
	}

	switch {
	case strings.Contains(canon, "region"):
		req.GroupBy = models.GroupByRegion
	case strings.Contains(canon, "tiempo"), strings.Contains(canon, "fecha"):
		req.GroupBy = models.GroupByDate
	}
	return req
}

// GenerateChartData は指定に従ってデータを集計し、値の降順に並べた系列を返します。
// sales はレコード件数、revenue は金額の合計、stock はカテゴリ別の在庫合計です。
// 該当データが無い場合は空の系列を返します。
func (s *ChartService) GenerateChartData(req models.ChartRequest) (*models.ChartData, error) {
	groups := newGroupSum()
	switch req.Metric {
	case models.MetricStock:
		// 在庫には地域・日付が無いため常にカテゴリで集計する
		for _, r := range s.data.ListInventory(models.InventoryFilter{}) {
			groups.add(r.Category, float64(r.Stock))
		}
	default:
		var start, end string
		if req.TimeRange != nil {
			start, end = req.TimeRange.Start, req.TimeRange.End
		}
		sales, err := s.data.ListSales(start, end)
		if err != nil {
			return nil, err
		}
		for _, r := range sales {
			value := 1.0
			if req.Metric == models.MetricRevenue {
				value = r.Amount
			}
			groups.add(salesKey(r, req.GroupBy), value)
		}
	}

	entries := groups.sortedDesc()
	labels := make([]string, 0, len(entries))
	values := make([]float64, 0, len(entries))
	for _, e := range entries {
		labels = append(labels, e.key)
		values = append(values, e.value)
	}

	ds := models.Dataset{
		Label:           metricLabel(req.Metric),
		Values:          values,
		BackgroundColor: assignColors(len(values)),
		BorderWidth:     1,
	}
	switch req.Kind {
	case models.ChartLine:
		ds.BorderColor = []string{Palette[0]}
	case models.ChartArea:
		ds.BorderColor = []string{Palette[0]}
		ds.Fill = true
	}
	return &models.ChartData{Labels: labels, Datasets: []models.Dataset{ds}}, nil
}

func salesKey(r models.SalesRecord, g models.GroupBy) string {
	switch g {
	case models.GroupByRegion:
		return r.Region
	case models.GroupByDate:
		return r.Date
	default:
		return r.Category
	}
}

func assignColors(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		colors[i] = Palette[i%len(Palette)]
	}
	return colors
}

func metricLabel(m models.Metric) string {
	if l, ok := metricLabels[m]; ok {
		return l
	}
	return "Valor"
}

// ChartOptionsFor はグラフのタイトルと軸ラベルを返します。
func ChartOptionsFor(req models.ChartRequest) *models.ChartOptions {
	group := req.GroupBy
	if req.Metric == models.MetricStock {
		group = models.GroupByCategory
	}
	metric := metricLabel(req.Metric)
	return &models.ChartOptions{
		Title:      metric + " por " + groupLabels[group],
		XAxisLabel: groupLabels[group],
		YAxisLabel: metric,
		Legend:     req.Kind == models.ChartPie || req.Kind == models.ChartRadar,
	}
}
