package models

// ChartKind はグラフの種類です。
type ChartKind string

const (
	ChartBar   ChartKind = "bar"
	ChartLine  ChartKind = "line"
	ChartPie   ChartKind = "pie"
	ChartArea  ChartKind = "area"
	ChartRadar ChartKind = "radar"
)

// Valid は既知のグラフ種類かを返します。
func (k ChartKind) Valid() bool {
	switch k {
	case ChartBar, ChartLine, ChartPie, ChartArea, ChartRadar:
		return true
	}
	return false
}

// Metric は可視化する指標です。
type Metric string

const (
	MetricSales   Metric = "sales"
	MetricRevenue Metric = "revenue"
	MetricStock   Metric = "stock"
)

// Valid は既知の指標かを返します。
func (m Metric) Valid() bool {
	return m == MetricSales || m == MetricRevenue || m == MetricStock
}

// GroupBy は指標を集計する軸です。
type GroupBy string

const (
	GroupByCategory GroupBy = "category"
	GroupByRegion   GroupBy = "region"
	GroupByDate     GroupBy = "date"
)

// Valid は既知の集計軸かを返します。
func (g GroupBy) Valid() bool {
	return g == GroupByCategory || g == GroupByRegion || g == GroupByDate
}

// ChartRequest は自由文から導出されたグラフ指定です。
type ChartRequest struct {
	Kind      ChartKind  `json:"type"`
	Metric    Metric     `json:"metric"`
	GroupBy   GroupBy    `json:"groupBy"`
	TimeRange *DateRange `json:"timeRange,omitempty"`
}

// ChartData は描画可能な系列データです。
// すべてのデータセットで len(Labels) == len(Values) が成り立ちます。
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset は ChartData の1系列です。
type Dataset struct {
	Label           string    `json:"label"`
	Values          []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor,omitempty"`
	BorderColor     []string  `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
	Fill            bool      `json:"fill,omitempty"`
}

// IsEmpty はデータ点が無いかを返します。
func (d *ChartData) IsEmpty() bool {
	return d == nil || len(d.Labels) == 0
}

// ChartOptions はグラフアクションに付与する表示オプションです。
type ChartOptions struct {
	Title      string `json:"title,omitempty"`
	XAxisLabel string `json:"xAxisLabel,omitempty"`
	YAxisLabel string `json:"yAxisLabel,omitempty"`
	Legend     bool   `json:"legend"`
}
