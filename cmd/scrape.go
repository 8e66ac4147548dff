package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/jedib0t/go-pretty/v6/table"
	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-ad-exact/internal/pipeline"
)

// ScrapeFlags は、ルートコマンド (全カテゴリ巡回) 固有のフラグを保持します。
type ScrapeFlags struct {
	MaxPages int
	Output   string
	Format   string
}

var scrapeFlags ScrapeFlags

// runScrape は、フラグから pipeline.Config を組み立てて巡回パイプラインを実行します。
func runScrape(cmd *cobra.Command, args []string) error {
	if scrapeFlags.MaxPages <= 0 {
		return fmt.Errorf("--max-pages には 1 以上を指定してください: %d", scrapeFlags.MaxPages)
	}

	fetcher := GetGlobalFetcher()
	if fetcher == nil {
		return fmt.Errorf("HTTPクライアントが初期化されていません")
	}

	cfg := pipeline.Config{
		BaseURL:             Flags.BaseURL,
		MaxPagesPerCategory: scrapeFlags.MaxPages,
		OutputPath:          scrapeFlags.Output,
		Format:              scrapeFlags.Format,
		Verbose:             clibase.Flags.Verbose,
	}

	// Ctrl+C で実行中のリクエストを中断できるようにする
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	result, err := pipeline.Run(ctx, cfg, fetcher, out)
	if err != nil {
		return fmt.Errorf("巡回パイプラインの実行エラー: %w", err)
	}

	if result.Written() {
		renderSummary(out, result)
	}
	return nil
}

// renderSummary は、カテゴリごとの件数とページ数を表形式で出力します。
func renderSummary(out io.Writer, result *pipeline.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"カテゴリ", "ページ", "件数"})
	for _, c := range result.Categories {
		t.AppendRow(table.Row{c.Category.Name, c.Pages, len(c.Listings)})
	}
	t.AppendFooter(table.Row{"合計", "", result.Total})
	t.SetStyle(table.StyleLight)
	fmt.Fprintln(out)
	t.Render()
}
