package cmd

import (
	"context"
	"fmt"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-ad-exact/pkg/scraper"
)

// カテゴリ一覧の取得のみを行うため、クライアントタイムアウトの2倍を全体のタイムアウトとする
const overallCategoriesTimeoutFactor = 2

// newCategoriesCmd は、カテゴリ一覧のみを表示するサブコマンドを生成します。
func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "カテゴリ一覧を取得し、発見順に表示します",
		Long:  `カテゴリ一覧ページを1回だけ取得し、カテゴリ名とURLを発見順に表示します。広告の巡回は行いません。`,
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher := GetGlobalFetcher()
			if fetcher == nil {
				return fmt.Errorf("HTTPクライアントが初期化されていません")
			}

			s, err := scraper.New(fetcher, Flags.BaseURL, scraper.WithVerbose(clibase.Flags.Verbose))
			if err != nil {
				return fmt.Errorf("Scraperの初期化エラー: %w", err)
			}

			overallTimeout := time.Duration(Flags.TimeoutSec*overallCategoriesTimeoutFactor) * time.Second
			if overallTimeout <= 0 {
				overallTimeout = 2 * time.Duration(defaultTimeoutSec) * time.Second
			}
			ctx, cancel := context.WithTimeout(context.Background(), overallTimeout)
			defer cancel()

			categories, err := s.DiscoverCategories(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "--- カテゴリ一覧 (%d 件) ---\n", len(categories))
			for i, c := range categories {
				fmt.Fprintf(out, "[%d] %s\n", i+1, c.Name)
				fmt.Fprintf(out, "    URL: %s\n", c.URL)
			}
			return nil
		},
	}
}
