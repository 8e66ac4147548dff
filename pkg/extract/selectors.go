package extract

import (
	"fmt"
)

// ----------------------------------------------------------------------
// セレクター定義 (サイトのマークアップに依存する部分)
// ----------------------------------------------------------------------
const (
	categoryContainerSelector = "div#adv_categories"
	categoryLinkSelector      = "a[href]"
	categoryPathSegment       = "/ad-category/"

	listingBlockSelector  = "div.post-block"
	previewAnchorSelector = "div.post-left a.preview"
	priceSelector         = "p.post-price"
	statsSelector         = "p.stats"
)

// StructureError は、期待するページ構造 (コンテナ要素) が見つからないことを示します。
// サイトのレイアウト変更を意味するため、呼び出し元は処理全体を中止します。
type StructureError struct {
	URL      string
	Selector string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("ページ構造エラー: %s に要素 %q が見つかりません (サイトのレイアウトが変更された可能性があります)", e.URL, e.Selector)
}
