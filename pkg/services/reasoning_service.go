package services

import (
	"context"
	"encoding/json"
	"strings"

	config "telar-chat-api/configs"
	"telar-chat-api/pkg/models"
	"telar-chat-api/pkg/reasoning"

	"go.uber.org/zap"
)

// Interpreter はユーザーテキストを Action に変換します。
// どちらのメソッドもエラーを返さず、失敗時は Chat か元の Action を返します。
type Interpreter interface {
	Interpret(ctx context.Context, text string) models.Action
	// Enrich は集計データを元に chart / report のメッセージを補強します。
	Enrich(ctx context.Context, action models.Action, data any) models.Action
}

// ReasoningService は外部の言語モデルを使う Interpreter です。
type ReasoningService struct {
	reasoner   reasoning.Reasoner
	prompt     *config.AssistantPrompt
	system     string
	monitoring *MonitoringService
	logger     *zap.Logger
}

// NewReasoningService は新しいReasoningServiceを生成します。
// monitoring と logger は nil でも構いません。
func NewReasoningService(r reasoning.Reasoner, prompt *config.AssistantPrompt, monitoring *MonitoringService, logger *zap.Logger) *ReasoningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReasoningService{
		reasoner:   r,
		prompt:     prompt,
		system:     prompt.BuildSystemInstruction(),
		monitoring: monitoring,
		logger:     logger,
	}
}

// Interpret は1回目の呼び出しでアクションを決定します。
func (s *ReasoningService) Interpret(ctx context.Context, text string) models.Action {
	reply, err := s.reasoner.Generate(ctx, s.system, text)
	if err != nil {
		s.logger.Error("❌ 推論サービスの呼び出しに失敗", zap.Error(err))
		s.recordFailure("interpret")
		return models.ChatAction{Reply: s.prompt.Replies.Apology, Message: s.prompt.Replies.ApologyShort}
	}

	action, err := ParseAction(reply)
	if err != nil {
		s.logger.Warn("⚠️ 応答をアクションとして解釈できません。チャットとして扱います", zap.Error(err))
		return FallbackChat(reply)
	}
	s.logger.Debug("🔍 アクションを解釈", zap.String("action", string(action.Kind())))
	return action
}

// Enrich は2回目の呼び出しでメッセージだけを差し替えます。
// 失敗や種別の異なる応答の場合は元のアクションをそのまま返します。
func (s *ReasoningService) Enrich(ctx context.Context, action models.Action, data any) models.Action {
	if action.Kind() != models.ActionChart && action.Kind() != models.ActionReport {
		return action
	}

	previous, err := json.Marshal(action)
	if err != nil {
		s.logger.Warn("⚠️ アクションのシリアライズに失敗", zap.Error(err))
		return action
	}
	payload, err := json.Marshal(data)
	if err != nil {
		s.logger.Warn("⚠️ 集計データのシリアライズに失敗", zap.Error(err))
		return action
	}

	reply, err := s.reasoner.Generate(ctx, s.system, s.prompt.BuildEnrichmentPrompt(string(previous), string(payload)))
	if err != nil {
		s.logger.Warn("⚠️ 補強呼び出しに失敗。1回目のメッセージを使います", zap.Error(err))
		s.recordFailure("enrich")
		return action
	}

	refined, err := ParseAction(reply)
	if err != nil || refined.Kind() != action.Kind() {
		s.logger.Warn("⚠️ 補強応答が互換性のない形式です", zap.Error(err))
		return action
	}
	msg := strings.TrimSpace(refined.Text())
	if msg == "" {
		return action
	}
	return action.WithMessage(msg)
}

func (s *ReasoningService) recordFailure(phase string) {
	if s.monitoring != nil {
		s.monitoring.RecordReasoningFailure(phase)
	}
}
