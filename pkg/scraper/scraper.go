package scraper

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/shouni/go-ad-exact/pkg/extract"
	"github.com/shouni/go-ad-exact/pkg/httpclient"
	"github.com/shouni/go-ad-exact/pkg/types"
)

const (
	// DefaultMaxPagesPerCategory は、1カテゴリあたりに取得するページ数の上限です。
	DefaultMaxPagesPerCategory = 50

	categoriesPath = "/categories/"
)

// Fetcher は、HTML ページの生バイト配列を取得する機能のインターフェースです。
// 404 の場合は found=false を返し、エラーにはしません。
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (body []byte, found bool, err error)
}

// CategoryScraper は、カテゴリの発見と各カテゴリのページングを逐次実行します。
type CategoryScraper struct {
	fetcher   Fetcher
	extractor *extract.ListingExtractor
	baseURL   string
	maxPages  int
	verbose   bool
}

// Option は CategoryScraper の設定を行うための関数型です。
type Option func(*CategoryScraper)

// WithMaxPages は、1カテゴリあたりのページ上限を設定します。
func WithMaxPages(n int) Option {
	return func(s *CategoryScraper) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithVerbose は、ページ単位のデバッグログを有効にします。
func WithVerbose(v bool) Option {
	return func(s *CategoryScraper) {
		s.verbose = v
	}
}

// New は CategoryScraper を初期化します。baseURL はサイトのオリジンです。
func New(fetcher Fetcher, baseURL string, options ...Option) (*CategoryScraper, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("scraper.New: Fetcher cannot be nil")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("scraper.New: 無効なベースURLです: %q", baseURL)
	}

	s := &CategoryScraper{
		fetcher:   fetcher,
		extractor: extract.NewListingExtractor(),
		baseURL:   strings.TrimRight(baseURL, "/"),
		maxPages:  DefaultMaxPagesPerCategory,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// MaxPages は、設定されているページ上限を返します。
func (s *CategoryScraper) MaxPages() int {
	return s.maxPages
}

// DiscoverCategories は、カテゴリ一覧ページを取得してカテゴリを発見順に返します。
func (s *CategoryScraper) DiscoverCategories(ctx context.Context) ([]types.Category, error) {
	pageURL := s.baseURL + categoriesPath

	body, found, err := s.fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の取得に失敗しました: %w", err)
	}
	if !found {
		// カテゴリ一覧は必ず存在するページなので、404 もエラーとして扱う
		return nil, fmt.Errorf("カテゴリ一覧の取得に失敗しました: %w", &httpclient.HTTPError{URL: pageURL, StatusCode: 404})
	}

	categories, err := extract.ParseCategories(body, s.baseURL, pageURL)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の解析に失敗しました: %w", err)
	}
	return categories, nil
}

// PageURL は、カテゴリURLと1始まりのページ番号から取得対象のURLを組み立てます。
func PageURL(categoryURL string, page int) string {
	if page <= 1 {
		return categoryURL
	}
	return fmt.Sprintf("%s/page/%d/", strings.TrimRight(categoryURL, "/"), page)
}

// PaginateCategory は、1ページ目から順にカテゴリを取得し、広告レコードを蓄積します。
// 404 または広告が0件のページに達した時点で打ち切り、上限ページ数に達した場合も黙って終了します。
func (s *CategoryScraper) PaginateCategory(ctx context.Context, category types.Category) (types.CategoryResult, error) {
	result := types.CategoryResult{Category: category}

	for page := 1; page <= s.maxPages; page++ {
		pageURL := PageURL(category.URL, page)
		result.Pages = page

		body, found, err := s.fetcher.FetchPage(ctx, pageURL)
		if err != nil {
			return result, fmt.Errorf("カテゴリ %q の %dページ目の取得に失敗しました: %w", category.Name, page, err)
		}
		if !found {
			if s.verbose {
				log.Printf("[%s] %dページ目は存在しません (404)。ページングを終了します。", category.Name, page)
			}
			break
		}

		listings, err := s.extractor.Extract(category.Name, body, pageURL)
		if err != nil {
			return result, fmt.Errorf("カテゴリ %q の %dページ目の解析に失敗しました: %w", category.Name, page, err)
		}
		if len(listings) == 0 {
			if s.verbose {
				log.Printf("[%s] %dページ目に広告がありません。ページングを終了します。", category.Name, page)
			}
			break
		}

		if s.verbose {
			log.Printf("[%s] %dページ目: %d 件", category.Name, page, len(listings))
		}
		result.Listings = append(result.Listings, listings...)
	}

	return result, nil
}
