package models

import "time"

// IntentType はユーザー発話の分類結果です。
type IntentType string

const (
	IntentPlatformData IntentType = "PLATFORM_DATA"
	IntentNavigation   IntentType = "NAVIGATION"
	IntentChart        IntentType = "CHART"
	IntentFilter       IntentType = "FILTER"
	IntentChat         IntentType = "CHAT"
	IntentReport       IntentType = "REPORT"
	IntentHelp         IntentType = "HELP"
)

// Intent は入力ごとに生成され、永続化されません。
type Intent struct {
	Type       IntentType  `json:"type"`
	Confidence float64     `json:"confidence"`
	Data       *IntentData `json:"data,omitempty"`
}

// IntentData は意図と一緒に抽出されたパラメータです。
type IntentData struct {
	ChartType  ChartKind         `json:"chartType,omitempty"`
	ReportType string            `json:"reportType,omitempty"`
	Filter     map[string]string `json:"filter,omitempty"`
	Path       string            `json:"path,omitempty"`
	Dates      *DateRange        `json:"dates,omitempty"`
}

// DateRange は両端を含む日付範囲です。どちらの境界も省略できます。
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// DateLayout は売上レコードと日付範囲で使う日付フォーマットです。
const DateLayout = "2006-01-02"

// InventoryRecord は在庫の1商品を表します。
type InventoryRecord struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Size     string  `json:"size,omitempty"`
	Gender   string  `json:"gender,omitempty"`
	Stock    int     `json:"stock"`
	Price    float64 `json:"price"`
}

// InventoryFilter は在庫レコードの絞り込み条件です。
// nil のフィールドは無視され、設定されたフィールドはすべて完全一致が必要です。
type InventoryFilter struct {
	ID       *string  `json:"id,omitempty"`
	Name     *string  `json:"name,omitempty"`
	Category *string  `json:"category,omitempty"`
	Size     *string  `json:"size,omitempty"`
	Gender   *string  `json:"gender,omitempty"`
	Stock    *int     `json:"stock,omitempty"`
	Price    *float64 `json:"price,omitempty"`
}

// IsEmpty は条件が1つも設定されていないかを返します。
func (f InventoryFilter) IsEmpty() bool {
	return f.ID == nil && f.Name == nil && f.Category == nil && f.Size == nil &&
		f.Gender == nil && f.Stock == nil && f.Price == nil
}

// Matches はレコードが全ての条件を満たすか（AND）を返します。
func (f InventoryFilter) Matches(r InventoryRecord) bool {
	if f.ID != nil && *f.ID != r.ID {
		return false
	}
	if f.Name != nil && *f.Name != r.Name {
		return false
	}
	if f.Category != nil && *f.Category != r.Category {
		return false
	}
	if f.Size != nil && *f.Size != r.Size {
		return false
	}
	if f.Gender != nil && *f.Gender != r.Gender {
		return false
	}
	if f.Stock != nil && *f.Stock != r.Stock {
		return false
	}
	if f.Price != nil && *f.Price != r.Price {
		return false
	}
	return true
}

// SalesRecord は日付・カテゴリ・地域ごとの売上1件です。
type SalesRecord struct {
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Region   string  `json:"region"`
}

// CategorySales は BusinessMetrics.TopCategories の要素です。
type CategorySales struct {
	Category string  `json:"category"`
	Sales    float64 `json:"sales"`
}

// CategoryStock は BusinessMetrics.StockLevels の要素です。
type CategoryStock struct {
	Category string `json:"category"`
	Stock    int    `json:"stock"`
}

// RegionSales は BusinessMetrics.RegionalPerformance の要素です。
type RegionSales struct {
	Region string  `json:"region"`
	Sales  float64 `json:"sales"`
}

// BusinessMetrics は売上と在庫から都度算出されるビジネス指標です。
type BusinessMetrics struct {
	TotalSales          float64         `json:"totalSales"`
	AverageOrderValue   float64         `json:"averageOrderValue"`
	TopCategories       []CategorySales `json:"topCategories"`
	StockLevels         []CategoryStock `json:"stockLevels"`
	RegionalPerformance []RegionSales   `json:"regionalPerformance"`
}

// Role は会話メッセージの発言者です。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationMessage は追記専用の会話ログの1件です。
type ConversationMessage struct {
	ID        string     `json:"id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp"`
	ChartKind ChartKind  `json:"chartType,omitempty"`
	ChartData *ChartData `json:"chartData,omitempty"`
}

// ChatRequest は POST /api/v1/assistant/messages のリクエストボディです。
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChartTextRequest は POST /api/v1/charts のリクエストボディです。
type ChartTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// Report は GenerateReport の結果です。Type に応じて1つのフィールドだけが設定されます。
type Report struct {
	Type      string            `json:"type"`
	Inventory []InventoryRecord `json:"inventory,omitempty"`
	Sales     []SalesRecord     `json:"sales,omitempty"`
	Metrics   *BusinessMetrics  `json:"metrics,omitempty"`
}

// Payload はレポートのデータ部分を返します。
func (r Report) Payload() any {
	switch r.Type {
	case "metrics":
		return r.Metrics
	case "sales":
		return r.Sales
	default:
		return r.Inventory
	}
}
