package export

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shouni/go-ad-exact/pkg/types"
)

const (
	// SheetName は出力ワークブックのシート名です。
	SheetName = "Listings"

	// DefaultBaseName は出力ファイル名 (拡張子なし) です。
	DefaultBaseName = "all_categories_listings"

	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// Columns は出力の列順です。
var Columns = []string{"Category", "Title", "URL", "Price", "Views"}

// Writer は、並べ替え済みの広告レコードをファイルに書き出す機能のインターフェースです。
type Writer interface {
	Write(path string, listings []types.Listing) error
	Extension() string
}

// NewWriter は、フォーマット名に対応する Writer を返します。
func NewWriter(format string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatXLSX:
		return NewXLSXWriter(), nil
	case FormatCSV:
		return NewCSVWriter(), nil
	default:
		return nil, fmt.Errorf("未対応の出力フォーマットです: %q (xlsx または csv を指定してください)", format)
	}
}

// DefaultPath は、Writer の拡張子を付けた既定の出力ファイル名を返します。
func DefaultPath(w Writer) string {
	return DefaultBaseName + "." + w.Extension()
}

// SortListings は、カテゴリ昇順、閲覧数降順 (閲覧数不明は各カテゴリの末尾) に並べ替えます。
// それ以外の順序は入力順を保ちます。
func SortListings(listings []types.Listing) {
	slices.SortStableFunc(listings, compareListings)
}

func compareListings(a, b types.Listing) int {
	if c := strings.Compare(a.Category, b.Category); c != 0 {
		return c
	}
	switch {
	case a.Views == nil && b.Views == nil:
		return 0
	case a.Views == nil:
		return 1
	case b.Views == nil:
		return -1
	}
	return cmp.Compare(*b.Views, *a.Views)
}

// rowStrings は、テキスト形式の出力向けに1行分のセル値を返します。不明な値は空文字列です。
func rowStrings(l types.Listing) []string {
	price := ""
	if l.Price != nil {
		price = strconv.FormatFloat(*l.Price, 'f', -1, 64)
	}
	views := ""
	if l.Views != nil {
		views = strconv.Itoa(*l.Views)
	}
	return []string{l.Category, l.Title, l.URL, price, views}
}
