package extract

import (
	"bytes"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	textUtils "github.com/shouni/go-utils/text"

	"github.com/shouni/go-ad-exact/pkg/types"
)

// ParseCategories はカテゴリ一覧ページの HTML から、カテゴリを発見順に返します。
// 相対リンクは baseURL を基準に解決されます。pageURL はエラーメッセージに使用されます。
//
// 同名のカテゴリが複数ある場合は1件にまとめられます。位置は最初の出現、
// URL は最後の出現のものが採用され、まとめられた旨をログに出力します。
func ParseCategories(html []byte, baseURL, pageURL string) ([]types.Category, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ベースURLのパースエラー: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("HTML解析に失敗しました: %w", err)
	}

	container := doc.Find(categoryContainerSelector).First()
	if container.Length() == 0 {
		return nil, &StructureError{URL: pageURL, Selector: categoryContainerSelector}
	}

	var categories []types.Category
	index := make(map[string]int)

	container.Find(categoryLinkSelector).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, categoryPathSegment) {
			return
		}

		name := textUtils.NormalizeText(a.Text())
		link := resolveURL(base, href)

		if i, ok := index[name]; ok {
			log.Printf("警告: カテゴリ名 %q が重複しています。URL を %s から %s に上書きします", name, categories[i].URL, link)
			categories[i].URL = link
			return
		}
		index[name] = len(categories)
		categories = append(categories, types.Category{Name: name, URL: link})
	})

	return categories, nil
}

// resolveURL は href を base 基準の絶対URLに解決します。解決できない場合は href をそのまま返します。
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
