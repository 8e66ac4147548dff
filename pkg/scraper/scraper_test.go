package scraper_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-ad-exact/pkg/extract"
	"github.com/shouni/go-ad-exact/pkg/httpclient"
	"github.com/shouni/go-ad-exact/pkg/scraper"
	"github.com/shouni/go-ad-exact/pkg/types"
)

// ======================================================================
// モック (Mock) の定義
// ======================================================================

// MockFetcher は URL ごとに用意した HTML を返します。未登録の URL は 404 扱いです。
type MockFetcher struct {
	pages     map[string]string
	errors    map[string]error
	requested []string
}

func newMockFetcher() *MockFetcher {
	return &MockFetcher{pages: map[string]string{}, errors: map[string]error{}}
}

func (m *MockFetcher) FetchPage(ctx context.Context, url string) ([]byte, bool, error) {
	m.requested = append(m.requested, url)
	if err, ok := m.errors[url]; ok {
		return nil, false, err
	}
	body, ok := m.pages[url]
	if !ok {
		return nil, false, nil
	}
	return []byte(body), true, nil
}

// listingsPage は n 件の広告ブロックを持つページを生成します。
func listingsPage(prefix string, n int) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, `<div class="post-block"><div class="post-left"><a class="preview" href="/ads/%s-%d/" title="%s %d">x</a></div><p class="stats">%d total views</p></div>`, prefix, i, prefix, i, i)
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

const base = "https://example.com"

// ======================================================================
// テスト関数
// ======================================================================

func TestNew(t *testing.T) {
	t.Run("nil fetcher", func(t *testing.T) {
		s, err := scraper.New(nil, base)
		assert.Error(t, err)
		assert.Nil(t, s)
	})
	t.Run("invalid base url", func(t *testing.T) {
		s, err := scraper.New(newMockFetcher(), "example.com")
		assert.Error(t, err)
		assert.Nil(t, s)
	})
	t.Run("defaults", func(t *testing.T) {
		s, err := scraper.New(newMockFetcher(), base+"/")
		require.NoError(t, err)
		assert.Equal(t, scraper.DefaultMaxPagesPerCategory, s.MaxPages())
	})
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, "https://example.com/ad-category/a/", scraper.PageURL("https://example.com/ad-category/a/", 1))
	assert.Equal(t, "https://example.com/ad-category/a/page/2/", scraper.PageURL("https://example.com/ad-category/a/", 2))
	assert.Equal(t, "https://example.com/ad-category/a/page/3/", scraper.PageURL("https://example.com/ad-category/a", 3))
	assert.Equal(t, "https://example.com/ad-category/a/page/4/", scraper.PageURL("https://example.com/ad-category/a//", 4))
}

func TestDiscoverCategories(t *testing.T) {
	t.Run("fetches the categories index", func(t *testing.T) {
		fetcher := newMockFetcher()
		fetcher.pages[base+"/categories/"] = `<div id="adv_categories"><a href="/ad-category/b/">B</a><a href="/ad-category/a/">A</a></div>`

		s, err := scraper.New(fetcher, base)
		require.NoError(t, err)

		cats, err := s.DiscoverCategories(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []types.Category{
			{Name: "B", URL: base + "/ad-category/b/"},
			{Name: "A", URL: base + "/ad-category/a/"},
		}, cats)
	})

	t.Run("missing container aborts", func(t *testing.T) {
		fetcher := newMockFetcher()
		fetcher.pages[base+"/categories/"] = `<html><body>maintenance</body></html>`

		s, _ := scraper.New(fetcher, base)
		_, err := s.DiscoverCategories(context.Background())

		var structErr *extract.StructureError
		assert.ErrorAs(t, err, &structErr)
	})

	t.Run("not found index is an HTTP error", func(t *testing.T) {
		s, _ := scraper.New(newMockFetcher(), base)
		_, err := s.DiscoverCategories(context.Background())
		assert.True(t, httpclient.IsHTTPError(err))
	})
}

func TestPaginateCategory(t *testing.T) {
	category := types.Category{Name: "Rifles", URL: base + "/ad-category/rifles/"}

	t.Run("stops at first empty page", func(t *testing.T) {
		fetcher := newMockFetcher()
		fetcher.pages[category.URL] = listingsPage("r", 10)
		fetcher.pages[category.URL+"page/2/"] = listingsPage("r", 0)
		fetcher.pages[category.URL+"page/3/"] = listingsPage("late", 5)

		s, _ := scraper.New(fetcher, base)
		result, err := s.PaginateCategory(context.Background(), category)
		require.NoError(t, err)

		assert.Len(t, result.Listings, 10)
		assert.Equal(t, 2, result.Pages)
		assert.Equal(t, []string{category.URL, category.URL + "page/2/"}, fetcher.requested)
		for _, l := range result.Listings {
			assert.Equal(t, "Rifles", l.Category)
		}
	})

	t.Run("stops at not found", func(t *testing.T) {
		fetcher := newMockFetcher()
		fetcher.pages[category.URL] = listingsPage("a", 2)
		fetcher.pages[category.URL+"page/2/"] = listingsPage("b", 3)

		s, _ := scraper.New(fetcher, base)
		result, err := s.PaginateCategory(context.Background(), category)
		require.NoError(t, err)

		assert.Len(t, result.Listings, 5)
		assert.Len(t, fetcher.requested, 3)
		assert.Equal(t, "a 0", result.Listings[0].Title)
		assert.Equal(t, "b 2", result.Listings[4].Title)
	})

	t.Run("page cap bounds the crawl", func(t *testing.T) {
		const maxPages = 4
		fetcher := newMockFetcher()
		for p := 1; p <= maxPages+2; p++ {
			fetcher.pages[scraper.PageURL(category.URL, p)] = listingsPage(fmt.Sprintf("p%d", p), 1)
		}

		s, _ := scraper.New(fetcher, base, scraper.WithMaxPages(maxPages))
		result, err := s.PaginateCategory(context.Background(), category)
		require.NoError(t, err)

		assert.Len(t, fetcher.requested, maxPages)
		assert.Len(t, result.Listings, maxPages)
		assert.Equal(t, maxPages, result.Pages)
	})

	t.Run("http error propagates", func(t *testing.T) {
		fetcher := newMockFetcher()
		fetcher.pages[category.URL] = listingsPage("a", 1)
		fetcher.errors[category.URL+"page/2/"] = &httpclient.HTTPError{URL: category.URL + "page/2/", StatusCode: 403}

		s, _ := scraper.New(fetcher, base)
		_, err := s.PaginateCategory(context.Background(), category)
		require.Error(t, err)

		var httpErr *httpclient.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, 403, httpErr.StatusCode)
	})
}
