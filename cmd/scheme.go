package cmd

import (
	"fmt"
	"net/url"
	"strings"
)

// ensureScheme は、URLに "://" が含まれない場合に https:// を補完し、末尾のスラッシュを取り除きます。
// 補完後のスキームが http または https であり、ホストを持つことをチェックします。
func ensureScheme(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("URLが空です")
	}

	// "localhost:8080" のような host:port はスキームとして解釈されるため、先に補完する
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("URLのパースエラー: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", fmt.Errorf("無効なURLスキームです。httpまたはhttpsを指定してください: %s", rawURL)
	}
	if parsedURL.Host == "" {
		return "", fmt.Errorf("URLにホストが含まれていません: %s", rawURL)
	}
	return strings.TrimRight(rawURL, "/"), nil
}
