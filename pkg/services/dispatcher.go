package services

import (
	"context"
	"strings"
	"sync"
	"time"

	config "telar-chat-api/configs"
	"telar-chat-api/pkg/models"
	"telar-chat-api/pkg/state"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Navigator はダッシュボードの画面遷移を発生させます。
type Navigator interface {
	NavigateTo(path string)
}

// NavigatorFunc は関数を Navigator として使うためのアダプタです。
type NavigatorFunc func(path string)

func (f NavigatorFunc) NavigateTo(path string) { f(path) }

// Scheduler は処理を遅延実行します。
type Scheduler interface {
	After(d time.Duration, f func())
}

// TimerScheduler は time.AfterFunc による Scheduler です。
type TimerScheduler struct {
	wg sync.WaitGroup
}

func (s *TimerScheduler) After(d time.Duration, f func()) {
	s.wg.Add(1)
	time.AfterFunc(d, func() {
		defer s.wg.Done()
		f()
	})
}

// Wait は予約済みの処理がすべて終わるまで待ちます。
func (s *TimerScheduler) Wait() {
	s.wg.Wait()
}

// Phase はディスパッチ1回分の状態遷移です。
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseInterpreting      Phase = "interpreting"
	PhaseNavigating        Phase = "navigating"
	PhaseBuildingChart     Phase = "building_chart"
	PhaseAggregatingReport Phase = "aggregating_report"
	PhaseFiltering         Phase = "filtering"
	PhaseChatting          Phase = "chatting"
	PhaseResponding        Phase = "responding"
)

// DispatchResult は Submit の結果です。
type DispatchResult struct {
	Message    models.ConversationMessage `json:"message"`
	Action     models.Action              `json:"action"`
	Trace      []Phase                    `json:"trace"`
	Navigation string                     `json:"navigation,omitempty"`
}

// DispatcherOptions は Dispatcher の任意の依存です。
type DispatcherOptions struct {
	Navigator   Navigator
	Scheduler   Scheduler
	Monitoring  *MonitoringService
	Logger      *zap.Logger
	FilterDelay time.Duration
	Now         func() time.Time
}

// Dispatcher は1ターン分の処理を実行し、会話ログに応答を追記します。
// 会話ログと在庫フィルタへの書き込みは Dispatcher だけが行います。
type Dispatcher struct {
	interpreter Interpreter
	data        *DataService
	charts      *ChartService
	store       *state.Store
	prompt      *config.AssistantPrompt

	navigator   Navigator
	scheduler   Scheduler
	monitoring  *MonitoringService
	logger      *zap.Logger
	filterDelay time.Duration
	now         func() time.Time
}

// NewDispatcher は新しいDispatcherを生成します。
func NewDispatcher(interpreter Interpreter, data *DataService, store *state.Store, prompt *config.AssistantPrompt, opts DispatcherOptions) *Dispatcher {
	d := &Dispatcher{
		interpreter: interpreter,
		data:        data,
		charts:      NewChartService(data),
		store:       store,
		prompt:      prompt,
		navigator:   opts.Navigator,
		scheduler:   opts.Scheduler,
		monitoring:  opts.Monitoring,
		logger:      opts.Logger,
		filterDelay: opts.FilterDelay,
		now:         opts.Now,
	}
	if d.navigator == nil {
		d.navigator = NavigatorFunc(func(string) {})
	}
	if d.scheduler == nil {
		d.scheduler = &TimerScheduler{}
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// Submit はユーザーのテキストを解釈し、対応する処理を実行して応答を返します。
// 空のテキスト以外でエラーを返すことはなく、失敗はすべて謝罪メッセージになります。
func (d *Dispatcher) Submit(ctx context.Context, text string) (result DispatchResult, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return DispatchResult{}, ErrEmptyMessage
	}

	d.store.AppendMessage(d.message(models.RoleUser, text))
	token := d.store.BeginTurn()
	defer d.store.EndTurn(token)

	trace := []Phase{PhaseIdle, PhaseInterpreting}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("❌ ディスパッチ中にパニックが発生", zap.Any("panic", r))
			result = d.respond(append(trace, PhaseChatting), d.apology(), nil, "")
			err = nil
		}
	}()

	action := d.interpreter.Interpret(ctx, text)
	if action == nil {
		action = d.apology()
	}

	var (
		chart      *models.ChartData
		navigation string
	)
	switch a := action.(type) {
	case models.NavigateAction:
		trace = append(trace, PhaseNavigating)
		if path := a.Path(); path != "" {
			return d.navigate(trace, a, path), nil
		}
		trace = append(trace, PhaseChatting)
		action = d.chat(d.prompt.Replies.UnknownAction)

	case models.ChartAction:
		trace = append(trace, PhaseBuildingChart)
		action, chart = d.buildChart(ctx, a)

	case models.ReportAction:
		trace = append(trace, PhaseAggregatingReport)
		action = d.aggregateReport(ctx, a)

	case models.FilterAction:
		trace = append(trace, PhaseFiltering)
		action, navigation = d.applyFilter(a, text)

	case models.ChatAction:
		trace = append(trace, PhaseChatting)
		if strings.TrimSpace(a.Text()) == "" {
			action = a.WithMessage("No entendí tu solicitud")
		}

	default:
		trace = append(trace, PhaseChatting)
		action = d.chat(d.prompt.Replies.UnknownAction)
	}

	return d.respond(trace, action, chart, navigation), nil
}

// navigate は遷移を即座に発生させ、Responding を経ずに終了します。
func (d *Dispatcher) navigate(trace []Phase, a models.NavigateAction, path string) DispatchResult {
	d.navigator.NavigateTo(path)
	d.store.SetCurrentPage(path)

	if strings.TrimSpace(a.Message) == "" {
		a.Message = d.prompt.NavigateReply(a.Destination)
	}
	msg := d.message(models.RoleAssistant, a.Message)
	d.store.AppendMessage(msg)
	d.recordAction(a)
	d.logger.Info("🔁 画面遷移", zap.String("path", path))

	return DispatchResult{Message: msg, Action: a, Trace: append(trace, PhaseIdle), Navigation: path}
}

func (d *Dispatcher) buildChart(ctx context.Context, a models.ChartAction) (models.Action, *models.ChartData) {
	req := a.Request()
	data, err := d.charts.GenerateChartData(req)
	if err != nil {
		d.logger.Warn("⚠️ グラフデータの生成に失敗", zap.Error(err))
		return d.chat(d.prompt.Replies.ChartError), nil
	}

	a.Series = data
	if a.Options == nil {
		a.Options = ChartOptionsFor(req)
	}
	if strings.TrimSpace(a.Message) == "" {
		a.Message = d.prompt.Replies.Chart
	}
	return d.enrich(ctx, a, data), data
}

func (d *Dispatcher) aggregateReport(ctx context.Context, a models.ReportAction) models.Action {
	report, err := d.data.ReportFor(a.ReportType, a.Filters)
	if err != nil {
		d.logger.Warn("⚠️ レポートの生成に失敗", zap.String("type", a.ReportType), zap.Error(err))
		return d.chat(d.prompt.Replies.ReportError)
	}
	if strings.TrimSpace(a.Message) == "" {
		a.Message = d.prompt.Replies.Report
	}
	return d.enrich(ctx, a, report.Payload())
}

// applyFilter は在庫フィルタを設定し、在庫画面への遷移を予約します。
func (d *Dispatcher) applyFilter(a models.FilterAction, text string) (models.Action, string) {
	query := strings.TrimSpace(a.Category)
	if query == "" {
		query = text
	}
	d.store.SetInventoryFilter(query)

	path := models.Destinations["inventory"]
	d.scheduler.After(d.filterDelay, func() {
		d.navigator.NavigateTo(path)
		d.store.SetCurrentPage(path)
	})

	if strings.TrimSpace(a.Message) == "" {
		a.Message = "Filtrando por: " + query
	}
	return a, path
}

// enrich は補強結果の種別が変わらず、メッセージが空でない場合だけ採用します。
func (d *Dispatcher) enrich(ctx context.Context, a models.Action, data any) models.Action {
	refined := d.interpreter.Enrich(ctx, a, data)
	if refined == nil || refined.Kind() != a.Kind() || strings.TrimSpace(refined.Text()) == "" {
		return a
	}
	return a.WithMessage(refined.Text())
}

func (d *Dispatcher) respond(trace []Phase, action models.Action, chart *models.ChartData, navigation string) DispatchResult {
	msg := d.message(models.RoleAssistant, action.Text())
	if a, ok := action.(models.ChartAction); ok && chart != nil {
		msg.ChartKind = a.ChartKind
		msg.ChartData = chart
	}
	d.store.AppendMessage(msg)
	d.recordAction(action)

	return DispatchResult{
		Message:    msg,
		Action:     action,
		Trace:      append(trace, PhaseResponding, PhaseIdle),
		Navigation: navigation,
	}
}

func (d *Dispatcher) message(role models.Role, content string) models.ConversationMessage {
	return models.ConversationMessage{
		ID:        ulid.Make().String(),
		Role:      role,
		Content:   content,
		Timestamp: d.now(),
	}
}

func (d *Dispatcher) apology() models.ChatAction {
	return models.ChatAction{Reply: d.prompt.Replies.Apology, Message: d.prompt.Replies.ApologyShort}
}

func (d *Dispatcher) chat(reply string) models.ChatAction {
	return models.ChatAction{Reply: reply, Message: reply}
}

func (d *Dispatcher) recordAction(a models.Action) {
	if d.monitoring != nil {
		d.monitoring.RecordAction(a.Kind())
	}
}
