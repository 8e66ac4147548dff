package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	priceNumberRegex = regexp.MustCompile(`[\d,.]+`)
	totalViewsRegex  = regexp.MustCompile(`^([\d,]+)\s+total views`)
)

// ParsePrice は価格テキストから最初の数値部分を取り出し、float64 として返します。
// 数値として解釈できない場合は nil を返します (エラーにはしない)。
func ParsePrice(text string) *float64 {
	m := priceNumberRegex.FindString(text)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseViews は "2,048 total views" 形式のテキストから閲覧数を取り出します。
// テキストが先頭からこの形式に一致しない場合は nil を返します。
func ParseViews(text string) *int {
	m := totalViewsRegex.FindStringSubmatch(strings.TrimSpace(text))
	if len(m) < 2 {
		return nil
	}
	v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return nil
	}
	return &v
}
