package types

// Category は、サイト上のカテゴリ名とそのカテゴリ一覧ページのURLを保持します。
// 発見時に一度だけ生成され、以後は変更されません。
type Category struct {
	Name string
	URL  string
}

// Listing は、カテゴリページ上の1件の広告から抽出されたレコードです。
// Price と Views は、元のテキストを数値として解釈できなかった場合 nil になります。
type Listing struct {
	Category string   // 発見時のカテゴリ名
	Title    string   // 広告タイトル
	URL      string   // 広告詳細ページの絶対URL
	Price    *float64 // 価格 (不明な場合は nil)
	Views    *int     // 累計閲覧数 (不明な場合は nil)
}

// CategoryResult は、1カテゴリ分のページング結果を保持します。
// 進捗表示とサマリー出力に利用されます。
type CategoryResult struct {
	Category Category
	Listings []Listing
	Pages    int // 実際に取得したページ数 (空ページ/404 を含む)
}
