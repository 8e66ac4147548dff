package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-ad-exact/internal/pipeline"
	"github.com/shouni/go-ad-exact/pkg/export"
	"github.com/shouni/go-ad-exact/pkg/httpclient"
	"github.com/shouni/go-ad-exact/pkg/retry"
	"github.com/shouni/go-ad-exact/pkg/scraper"
)

// --- グローバル定数 ---

const (
	appName           = "ad-exact"
	defaultTimeoutSec = 30 // 秒
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	TimeoutSec int     // --timeout タイムアウト
	MaxRetries int     // --max-retries リトライ回数
	Rate       float64 // --rate 1秒あたりのリクエスト数
	BaseURL    string  // --base-url 対象サイトのオリジン
}

var Flags AppFlags
var globalFetcher *httpclient.Client

// newRootCmd は、clibase のルートコマンドを土台に、全カテゴリ巡回を行うルートコマンドを組み立てます。
// --verbose は clibase が永続フラグとして提供します。
func newRootCmd() *cobra.Command {
	rootCmd := clibase.NewRootCmd(appName, addAppPersistentFlags, initAppPreRunE)
	rootCmd.Short = "クラシファイド広告サイトの全カテゴリを巡回し、広告一覧をワークブックに書き出します"
	rootCmd.Long = `カテゴリ一覧ページからすべてのカテゴリを発見し、各カテゴリを上限ページ数まで順にページングして
広告のタイトル・URL・価格・閲覧数を抽出します。結果はカテゴリ昇順、閲覧数降順に並べ替えて
1シートのワークブック (all_categories_listings.xlsx) に保存します。`
	rootCmd.Args = cobra.NoArgs
	rootCmd.SilenceUsage = true

	// clibase の既定 Run (ヘルプ表示) を巡回処理に置き換える
	rootCmd.Run = nil
	rootCmd.RunE = runScrape

	rootCmd.Flags().IntVar(&scrapeFlags.MaxPages, "max-pages", scraper.DefaultMaxPagesPerCategory, "1カテゴリあたりの最大ページ数")
	rootCmd.Flags().StringVarP(&scrapeFlags.Output, "output", "o", "", "出力ファイルのパス (既定: all_categories_listings.<format>)")
	rootCmd.Flags().StringVarP(&scrapeFlags.Format, "format", "f", export.FormatXLSX, "出力フォーマット (xlsx または csv)")

	rootCmd.AddCommand(newCategoriesCmd())
	return rootCmd
}

// --- 初期化とロジック ---

func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().IntVar(&Flags.TimeoutSec, "timeout", defaultTimeoutSec, "HTTPリクエストのタイムアウト時間（秒）")
	rootCmd.PersistentFlags().IntVar(&Flags.MaxRetries, "max-retries", retry.DefaultMaxRetries, "5xx/ネットワークエラー時のリトライ最大回数")
	rootCmd.PersistentFlags().Float64Var(&Flags.Rate, "rate", httpclient.DefaultRequestsPerSecond, "1秒あたりの最大リクエスト数 (0 で無制限)")
	rootCmd.PersistentFlags().StringVar(&Flags.BaseURL, "base-url", pipeline.DefaultBaseURL, "対象サイトのオリジン")
}

// initAppPreRunE は、全コマンドの実行前にフラグを検証し、共有フェッチャーを初期化します。
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	baseURL, err := ensureScheme(Flags.BaseURL)
	if err != nil {
		return fmt.Errorf("ベースURLの処理エラー: %w", err)
	}
	Flags.BaseURL = baseURL

	if Flags.MaxRetries < 0 {
		return fmt.Errorf("--max-retries には 0 以上を指定してください: %d", Flags.MaxRetries)
	}

	timeout := time.Duration(Flags.TimeoutSec) * time.Second

	// clibase の PersistentPreRunE から呼ばれるため、clibase.Flags.Verbose は設定済み
	if clibase.Flags.Verbose {
		log.Printf("HTTPクライアントのタイムアウトを設定しました (Timeout: %s)。", timeout)
		log.Printf("HTTPクライアントのリトライ回数を設定しました (MaxRetries: %d)。", Flags.MaxRetries)
		log.Printf("リクエスト間隔を設定しました (Rate: %.2f req/s)。", Flags.Rate)
	}

	globalFetcher = httpclient.New(
		timeout,
		httpclient.WithMaxRetries(uint64(Flags.MaxRetries)),
		httpclient.WithRateLimit(Flags.Rate),
	)
	return nil
}

// GetGlobalFetcher は、初期化されたフェッチャーを返す関数 (DIの代わり)
func GetGlobalFetcher() *httpclient.Client {
	return globalFetcher
}

// --- エントリポイント ---

// Execute は、ルートコマンドを実行するメイン関数です。
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
