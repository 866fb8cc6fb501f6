// Package cli はダッシュボードアシスタントのコマンドラインツールです。
// サーバーを起動せずに分類・応答・集計を確認できます。
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	config "telar-chat-api/configs"
	"telar-chat-api/pkg/app"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	providerFlag string
	formatFlag   string
)

// RootCmd はトップレベルのコマンドです。
var RootCmd = &cobra.Command{
	Use:           "telar",
	Short:         "Telar dashboard assistant CLI",
	Long:          "Classify messages, run the assistant and inspect the sample apparel data from the terminal.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&providerFlag, "provider", "p", "local", "Reasoning provider: local, gemini or azure (empty uses REASONING_PROVIDER)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

// newApp は CLI 用の App を組み立てます。ログは出力しません。
func newApp(ctx context.Context) (*app.App, error) {
	loadEnv(os.Stderr)
	cfg := config.LoadConfig()
	if providerFlag != "" {
		cfg.ReasoningProvider = providerFlag
	}
	// CLI では会話ログを永続化しない
	cfg.StateDBPath = ""
	return app.New(ctx, cfg, zap.NewNop())
}

// loadEnv は .env を読み込みます。ファイルが無いのは通常の状態なので警告しません。
func loadEnv(w io.Writer, filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(w, "warning: .env could not be loaded: %v\n", err)
	}
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func textFormat() bool {
	return formatFlag == "text"
}
