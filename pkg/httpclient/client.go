package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/shouni/go-ad-exact/pkg/retry"
)

const (
	// HTTPクライアント関連の定数
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRequestsPerSecond は、同一クライアントから送るリクエストの既定のペースです。
	DefaultRequestsPerSecond = 2.0

	// サイトからのブロックを避けるためのUser-Agent
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

	maxErrorBodyLength = 1024
)

// Doer は、標準の *http.Client.Do() と互換性のあるHTTPクライアントのインターフェースです。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPError は、2xx でも 404 でもないステータスコードを示すエラー型です。
type HTTPError struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return fmt.Sprintf("HTTPエラー: ステータスコード %d (URL: %s), ボディなし", e.StatusCode, e.URL)
	}
	if len(body) > maxErrorBodyLength {
		body = body[:maxErrorBodyLength] + "..."
	}
	return fmt.Sprintf("HTTPエラー: ステータスコード %d (URL: %s), ボディ: %s", e.StatusCode, e.URL, body)
}

// Retryable は、サーバー側の一時的な障害 (5xx) であれば true を返します。
func (e *HTTPError) Retryable() bool {
	return e.StatusCode >= 500 && e.StatusCode <= 599
}

// IsHTTPError は、err のチェーンに *HTTPError が含まれるかを判定します。
func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// pacedDoer は、httpkit に渡す Doer です。リクエスト間隔の制御とブラウザ相当のヘッダー付与を行い、
// 直近のレスポンスのステータスコードを記録します。
type pacedDoer struct {
	base    Doer
	limiter *rate.Limiter

	mu         sync.Mutex
	lastStatus int
}

func (d *pacedDoer) Do(req *http.Request) (*http.Response, error) {
	d.setLastStatus(0)
	if err := d.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("リクエスト間隔の待機に失敗しました: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := d.base.Do(req)
	if err != nil {
		return nil, err
	}
	d.setLastStatus(resp.StatusCode)
	return resp, nil
}

func (d *pacedDoer) setLastStatus(code int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastStatus = code
}

func (d *pacedDoer) LastStatus() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastStatus
}

// Client は、httpkit.Client による1回分の GET を、Cloudflare 対策済みのトランスポートと
// 指数バックオフによるリトライで包んだ HTML ページ取得クライアントです。
type Client struct {
	kit         *httpkit.Client
	doer        *pacedDoer
	retryConfig retry.Config
}

// Option は Client の設定を行うための関数型です。
type Option func(*Client)

// WithHTTPClient は、カスタムの Doer を設定します (主にテスト用)。
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		c.doer.base = doer
	}
}

// WithMaxRetries は、5xx/ネットワークエラー時の最大リトライ回数を設定します。
func WithMaxRetries(max uint64) Option {
	return func(c *Client) {
		c.retryConfig.MaxRetries = max
	}
}

// WithRetryConfig は、リトライ設定を丸ごと差し替えます。
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) {
		c.retryConfig = cfg
	}
}

// WithRateLimit は、1秒あたりのリクエスト数の上限を設定します。0 以下で無制限になります。
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.doer.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.doer.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
}

// New は、新しい Client を生成します。
func New(timeout time.Duration, options ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	c := &Client{
		doer: &pacedDoer{
			base:    newBypassHTTPClient(timeout),
			limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		},
		retryConfig: retry.DefaultConfig(),
	}
	for _, opt := range options {
		opt(c)
	}

	// リトライは FetchPage 側で行うため、httpkit には1回だけ送らせる
	c.kit = httpkit.New(timeout, httpkit.WithHTTPClient(c.doer), httpkit.WithMaxRetries(0))
	return c
}

// newBypassHTTPClient は、Cloudflare のボット判定を通過するためのトランスポートと
// チャレンジ Cookie を保持する CookieJar を備えた *http.Client を生成します。
func newBypassHTTPClient(timeout time.Duration) *http.Client {
	// publicsuffix を渡す限り cookiejar.New はエラーを返さない
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	transport := http.DefaultTransport.(*http.Transport).Clone()

	return &http.Client{
		Timeout:   timeout,
		Jar:       jar,
		Transport: cloudflarebp.AddCloudFlareByPass(transport),
	}
}

// FetchPage は URL を GET し、レスポンスボディを返します。
// 404 の場合は found=false かつ err=nil を返します。その他の非 2xx は *HTTPError です。
func (c *Client) FetchPage(ctx context.Context, url string) (body []byte, found bool, err error) {
	op := func() error {
		var fetchErr error
		body, found, fetchErr = c.fetchOnce(ctx, url)
		return fetchErr
	}

	err = retry.Do(
		ctx,
		c.retryConfig,
		fmt.Sprintf("URL(%s)のフェッチ", url),
		op,
		isRetryableError,
	)
	if err != nil {
		return nil, false, err
	}
	return body, found, nil
}

// fetchOnce は httpkit で1回だけ GET し、その結果を found/HTTPError に振り分けます。
func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, bool, error) {
	body, err := c.kit.FetchBytes(ctx, url)
	if err == nil {
		return body, true, nil
	}

	var kitErr *httpkit.NonRetryableHTTPError
	if errors.As(err, &kitErr) {
		if kitErr.StatusCode == http.StatusNotFound {
			return nil, false, nil
		}
		return nil, false, &HTTPError{URL: url, StatusCode: kitErr.StatusCode, Body: kitErr.Body}
	}

	// 5xx などは httpkit が汎用エラーとして返すため、記録したステータスコードで分類する
	if status := c.doer.LastStatus(); status != 0 && (status < 200 || status > 299) {
		if status == http.StatusNotFound {
			return nil, false, nil
		}
		return nil, false, &HTTPError{URL: url, StatusCode: status}
	}

	return nil, false, fmt.Errorf("HTTPリクエストに失敗しました (ネットワーク/接続エラー): %w", err)
}

// isRetryableError はエラーがリトライ対象かどうかを判定します。
// retry.ShouldRetryFunc 型のシグネチャを満たします。
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// コンテキストのキャンセル/タイムアウトは、バックオフ側でコンテキストを見て打ち切られる
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}

	// ネットワークエラーなどはリトライ対象
	return true
}
