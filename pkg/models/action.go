package models

import "encoding/json"

// ActionKind は Action の種別です。
type ActionKind string

const (
	ActionNavigate ActionKind = "navigate"
	ActionChart    ActionKind = "chart"
	ActionReport   ActionKind = "report"
	ActionFilter   ActionKind = "filter"
	ActionChat     ActionKind = "chat"
)

// Action は発話から導出された実行可能なアクションです。
// 各バリアントは描画に必要なフィールドを自身で保持します。
type Action interface {
	Kind() ActionKind
	// Text は表示用のメッセージを返します。
	Text() string
	// WithMessage はメッセージだけを差し替えたコピーを返します。
	WithMessage(message string) Action
}

// Destinations は遷移先名とダッシュボードのパスの対応表です。
var Destinations = map[string]string{
	"dashboard": "/dashboard",
	"inventory": "/dashboard/inventory",
	"analytics": "/dashboard/analytics",
	"settings":  "/dashboard/settings",
	"upload":    "/dashboard/upload",
}

// NavigateAction はダッシュボードの画面遷移です。
type NavigateAction struct {
	Destination string `json:"destination"`
	Message     string `json:"message"`
}

func (a NavigateAction) Kind() ActionKind { return ActionNavigate }
func (a NavigateAction) Text() string     { return a.Message }

func (a NavigateAction) WithMessage(message string) Action {
	a.Message = message
	return a
}

// Path は遷移先のパスを返します。未知の遷移先の場合は空文字です。
func (a NavigateAction) Path() string {
	return Destinations[a.Destination]
}

func (a NavigateAction) MarshalJSON() ([]byte, error) {
	type alias NavigateAction
	return json.Marshal(struct {
		Action ActionKind `json:"action"`
		alias
	}{ActionNavigate, alias(a)})
}

// ChartAction は指標を集計軸ごとにグラフ表示します。
type ChartAction struct {
	ChartKind ChartKind     `json:"type"`
	Metric    Metric        `json:"metric"`
	GroupBy   GroupBy       `json:"groupBy"`
	TimeRange *DateRange    `json:"timeRange,omitempty"`
	Series    *ChartData    `json:"chartData,omitempty"`
	Options   *ChartOptions `json:"chartOptions,omitempty"`
	Message   string        `json:"message"`
}

func (a ChartAction) Kind() ActionKind { return ActionChart }
func (a ChartAction) Text() string     { return a.Message }

func (a ChartAction) WithMessage(message string) Action {
	a.Message = message
	return a
}

// Request はアクションが持つグラフ指定を返します。
func (a ChartAction) Request() ChartRequest {
	return ChartRequest{Kind: a.ChartKind, Metric: a.Metric, GroupBy: a.GroupBy, TimeRange: a.TimeRange}
}

func (a ChartAction) MarshalJSON() ([]byte, error) {
	type alias ChartAction
	return json.Marshal(struct {
		Action ActionKind `json:"action"`
		alias
	}{ActionChart, alias(a)})
}

// ReportAction はレポート用データの要約です。
type ReportAction struct {
	ReportType string         `json:"type"`
	Filters    map[string]any `json:"filters,omitempty"`
	Message    string         `json:"message"`
}

func (a ReportAction) Kind() ActionKind { return ActionReport }
func (a ReportAction) Text() string     { return a.Message }

func (a ReportAction) WithMessage(message string) Action {
	a.Message = message
	return a
}

func (a ReportAction) MarshalJSON() ([]byte, error) {
	type alias ReportAction
	return json.Marshal(struct {
		Action ActionKind `json:"action"`
		alias
	}{ActionReport, alias(a)})
}

// FilterAction は在庫画面の絞り込みです。
type FilterAction struct {
	Category string         `json:"category"`
	Filters  map[string]any `json:"filters,omitempty"`
	Message  string         `json:"message"`
}

func (a FilterAction) Kind() ActionKind { return ActionFilter }
func (a FilterAction) Text() string     { return a.Message }

func (a FilterAction) WithMessage(message string) Action {
	a.Message = message
	return a
}

func (a FilterAction) MarshalJSON() ([]byte, error) {
	type alias FilterAction
	return json.Marshal(struct {
		Action ActionKind `json:"action"`
		alias
	}{ActionFilter, alias(a)})
}

// ChatAction は自由形式の会話応答です。
type ChatAction struct {
	Reply   string `json:"response"`
	Message string `json:"message"`
}

func (a ChatAction) Kind() ActionKind { return ActionChat }

// Text は短いメッセージより詳細な応答を優先します。
func (a ChatAction) Text() string {
	if a.Reply != "" {
		return a.Reply
	}
	return a.Message
}

func (a ChatAction) WithMessage(message string) Action {
	a.Message = message
	return a
}

func (a ChatAction) MarshalJSON() ([]byte, error) {
	type alias ChatAction
	return json.Marshal(struct {
		Action ActionKind `json:"action"`
		alias
	}{ActionChat, alias(a)})
}
