// Package gemini は Google Gemini を reasoning.Reasoner として提供します。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/genai"

	"telar-chat-api/pkg/reasoning"
)

// DefaultModel は GEMINI_MODEL 未設定時に使うモデルです。
const DefaultModel = "gemini-2.0-flash"

// Client は genai クライアントのラッパーです。
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewClient は新しいGeminiクライアントを生成します。
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY が設定されていません")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genaiクライアントの作成に失敗: %w", err)
	}
	return &Client{client: client, model: model, temperature: 0.2}, nil
}

// Generate は reasoning.Reasoner を実装します。
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), config)
	if err != nil {
		return "", classify(err)
	}
	text := resp.Text()
	if text == "" {
		return "", reasoning.ErrEmptyReply
	}
	return text, nil
}

// classify は 429 / 5xx とネットワークエラーを一時的な失敗として包みます。
// 呼び出し元のキャンセルは再試行しません。
func classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("Gemini API への接続に失敗: %w: %w", reasoning.ErrTransient, err)
	}

	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	if code == http.StatusTooManyRequests || code >= http.StatusInternalServerError {
		return fmt.Errorf("Gemini API エラー (status: %d): %w: %w", code, reasoning.ErrTransient, err)
	}
	return fmt.Errorf("Gemini API 呼び出しに失敗: %w", err)
}
