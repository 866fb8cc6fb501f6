package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed assistant_prompt.yaml
var defaultAssistantPrompt []byte

// AssistantPrompt はassistant_prompt.yamlの構造を定義
type AssistantPrompt struct {
	System struct {
		Role     string `yaml:"role"`
		Goal     string `yaml:"goal"`
		Language string `yaml:"language"`
	} `yaml:"system"`

	Actions []struct {
		Name  string `yaml:"name"`
		When  string `yaml:"when"`
		Shape string `yaml:"shape"`
	} `yaml:"actions"`

	Rules []string `yaml:"rules"`

	Example struct {
		Request  string `yaml:"request"`
		Response string `yaml:"response"`
	} `yaml:"example"`

	Enrichment string `yaml:"enrichment"`

	Replies Replies `yaml:"replies"`
}

// Replies はアシスタントが使う定型文です。
type Replies struct {
	Apology       string            `yaml:"apology"`
	ApologyShort  string            `yaml:"apology_short"`
	ChartError    string            `yaml:"chart_error"`
	ReportError   string            `yaml:"report_error"`
	UnknownAction string            `yaml:"unknown_action"`
	Help          string            `yaml:"help"`
	Greeting      string            `yaml:"greeting"`
	Fallback      string            `yaml:"fallback"`
	Filter        string            `yaml:"filter"`
	Chart         string            `yaml:"chart"`
	Report        string            `yaml:"report"`
	Navigate      map[string]string `yaml:"navigate"`
}

// LoadAssistantPrompt はアシスタントのプロンプト設定を読み込む。
// pathが空の場合は埋め込みの既定設定を使う。
func LoadAssistantPrompt(path string) (*AssistantPrompt, error) {
	data := defaultAssistantPrompt
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("プロンプト設定ファイルの読み込みに失敗: %w", err)
		}
		data = b
	}

	var prompt AssistantPrompt
	if err := yaml.Unmarshal(data, &prompt); err != nil {
		return nil, fmt.Errorf("YAMLのパースに失敗: %w", err)
	}
	if len(prompt.Actions) == 0 {
		return nil, fmt.Errorf("プロンプト設定に actions がありません")
	}
	if prompt.Replies.Apology == "" {
		return nil, fmt.Errorf("プロンプト設定に replies.apology がありません")
	}
	if prompt.Enrichment == "" && path != "" {
		var def AssistantPrompt
		if err := yaml.Unmarshal(defaultAssistantPrompt, &def); err != nil {
			return nil, fmt.Errorf("埋め込みプロンプトのパースに失敗: %w", err)
		}
		prompt.Enrichment = def.Enrichment
	}
	// enrichment は前回の応答とデータの2つを埋め込む
	if n := strings.Count(prompt.Enrichment, "%s"); n != 2 || strings.Count(prompt.Enrichment, "%") != 2 {
		return nil, fmt.Errorf("プロンプト設定の enrichment には %%s が2つ必要です (found %d)", n)
	}
	return &prompt, nil
}

// DefaultAssistantPrompt は埋め込みの既定設定を返す
func DefaultAssistantPrompt() *AssistantPrompt {
	prompt, err := LoadAssistantPrompt("")
	if err != nil {
		panic(fmt.Sprintf("埋め込みプロンプトが不正です: %v", err))
	}
	return prompt
}

// BuildSystemInstruction は設定からシステム指示を構築
func (p *AssistantPrompt) BuildSystemInstruction() string {
	var sb strings.Builder

	// 役割の定義
	sb.WriteString(fmt.Sprintf("Eres %s.\n", p.System.Role))
	sb.WriteString(fmt.Sprintf("Tu objetivo es %s.\n\n", p.System.Goal))

	// アクション定義
	sb.WriteString("CAPACIDADES:\n\n")
	for i, a := range p.Actions {
		sb.WriteString(fmt.Sprintf("%d. %s, genera:\n", i+1, a.When))
		sb.WriteString(strings.TrimRight(a.Shape, "\n"))
		sb.WriteString("\n\n")
	}

	// 制約
	sb.WriteString("IMPORTANTE:\n")
	for _, rule := range p.Rules {
		sb.WriteString(fmt.Sprintf("- %s\n", rule))
	}

	// 例
	if p.Example.Request != "" {
		sb.WriteString(fmt.Sprintf("\nEjemplo de solicitud: %q\nRespuesta esperada:\n", p.Example.Request))
		sb.WriteString(strings.TrimRight(p.Example.Response, "\n"))
		sb.WriteString("\n")
	}
	return sb.String()
}

// BuildEnrichmentPrompt は2回目の呼び出し用のプロンプトを構築
func (p *AssistantPrompt) BuildEnrichmentPrompt(previous, data string) string {
	return fmt.Sprintf(p.Enrichment, previous, data)
}

// NavigateReply は遷移先ごとの定型文を返す
func (p *AssistantPrompt) NavigateReply(destination string) string {
	if msg, ok := p.Replies.Navigate[destination]; ok {
		return msg
	}
	return "Te llevo a " + destination
}
