package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/shouni/go-ad-exact/pkg/export"
	"github.com/shouni/go-ad-exact/pkg/scraper"
	"github.com/shouni/go-ad-exact/pkg/types"
)

// DefaultBaseURL は、全リクエストと相対リンク解決に使われるサイトのオリジンです。
const DefaultBaseURL = "https://utahgunexchange.com"

// Config は、パイプライン全体の設定を保持します。
type Config struct {
	BaseURL             string
	MaxPagesPerCategory int
	OutputPath          string // 空の場合は export.DefaultPath
	Format              string // "xlsx" または "csv"
	Verbose             bool
}

// DefaultConfig は、フラグ未指定時と同じ設定を返します。
func DefaultConfig() Config {
	return Config{
		BaseURL:             DefaultBaseURL,
		MaxPagesPerCategory: scraper.DefaultMaxPagesPerCategory,
		Format:              export.FormatXLSX,
	}
}

// Result は、1回の実行結果のサマリーです。
type Result struct {
	Categories []types.CategoryResult
	Total      int
	OutputPath string // 書き出しを行わなかった場合は空
}

// Written は、出力ファイルが書き出されたかを返します。
func (r *Result) Written() bool {
	return r.OutputPath != ""
}

// Run は、カテゴリの発見、各カテゴリのページング、集約・並べ替え・書き出しを順に実行します。
// 進捗は out に出力されます。広告が1件も取得できなかった場合はファイルを書き出さずに正常終了します。
func Run(ctx context.Context, cfg Config, fetcher scraper.Fetcher, out io.Writer) (*Result, error) {
	writer, err := export.NewWriter(cfg.Format)
	if err != nil {
		return nil, err
	}
	outputPath := cfg.OutputPath
	if outputPath == "" {
		outputPath = export.DefaultPath(writer)
	}

	s, err := scraper.New(fetcher, cfg.BaseURL,
		scraper.WithMaxPages(cfg.MaxPagesPerCategory),
		scraper.WithVerbose(cfg.Verbose),
	)
	if err != nil {
		return nil, fmt.Errorf("Scraperの初期化エラー: %w", err)
	}

	// 1. カテゴリの発見
	fmt.Fprintln(out, "カテゴリ一覧を取得しています…")
	categories, err := s.DiscoverCategories(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "%d 件のカテゴリが見つかりました。\n", len(categories))

	// 2. 発見順にカテゴリを1つずつページング
	result := &Result{}
	var all []types.Listing
	for _, category := range categories {
		fmt.Fprintf(out, "  → カテゴリを取得中: %s\n", category.Name)

		catResult, err := s.PaginateCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "     • %d 件\n", len(catResult.Listings))

		result.Categories = append(result.Categories, catResult)
		all = append(all, catResult.Listings...)
	}
	result.Total = len(all)

	if len(all) == 0 {
		fmt.Fprintln(out, "広告を1件も取得できませんでした。終了します。")
		return result, nil
	}

	// 3. 並べ替えと書き出し
	export.SortListings(all)
	if err := writer.Write(outputPath, all); err != nil {
		return nil, err
	}
	result.OutputPath = outputPath

	fmt.Fprintf(out, "\n完了: %d カテゴリから %d 件の広告を取得しました。\n", len(categories), len(all))
	fmt.Fprintf(out, "出力 → %s\n", outputPath)

	return result, nil
}
