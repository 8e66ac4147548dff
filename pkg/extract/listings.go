package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	textUtils "github.com/shouni/go-utils/text"

	"github.com/shouni/go-ad-exact/pkg/types"
)

// ListingExtractor は、カテゴリ一覧ページの HTML から広告レコードを抽出します。
type ListingExtractor struct{}

// NewListingExtractor は、新しい ListingExtractor を生成します。
func NewListingExtractor() *ListingExtractor {
	return &ListingExtractor{}
}

// Extract は1ページ分の HTML を解析し、広告ブロックごとに Listing を返します。
// pageURL は相対リンクの解決に使用されます。
//
// プレビューリンクを持たないブロックは読み飛ばされます。価格や閲覧数の欠落・不正は
// そのフィールドを nil にするだけで、ブロック自体は捨てません。
func (e *ListingExtractor) Extract(categoryName string, html []byte, pageURL string) ([]types.Listing, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("ページURLのパースエラー: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("HTML解析に失敗しました: %w", err)
	}

	return e.extractFromDocument(categoryName, doc, base), nil
}

// extractFromDocument は goquery.Document から広告ブロックを走査します。
func (e *ListingExtractor) extractFromDocument(categoryName string, doc *goquery.Document, base *url.URL) []types.Listing {
	var listings []types.Listing

	doc.Find(listingBlockSelector).Each(func(_ int, block *goquery.Selection) {
		listing, ok := e.processBlock(categoryName, block, base)
		if ok {
			listings = append(listings, listing)
		}
	})

	return listings
}

// processBlock は1つの広告ブロックを Listing に変換します。
func (e *ListingExtractor) processBlock(categoryName string, block *goquery.Selection, base *url.URL) (types.Listing, bool) {
	anchor := block.Find(previewAnchorSelector).First()
	if anchor.Length() == 0 {
		return types.Listing{}, false
	}
	href, ok := anchor.Attr("href")
	if !ok {
		return types.Listing{}, false
	}

	title, _ := anchor.Attr("title")
	title = strings.TrimSpace(title)
	if title == "" {
		title = textUtils.NormalizeText(anchor.Text())
	}

	listing := types.Listing{
		Category: categoryName,
		Title:    title,
		URL:      resolveURL(base, href),
	}

	if price := block.Find(priceSelector).First(); price.Length() > 0 {
		listing.Price = ParsePrice(strings.TrimSpace(price.Text()))
	}
	if stats := block.Find(statsSelector).First(); stats.Length() > 0 {
		listing.Views = ParseViews(textUtils.NormalizeText(stats.Text()))
	}

	return listing, true
}
