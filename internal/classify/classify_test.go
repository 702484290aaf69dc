package classify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsLikelyContentPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"root", "https://x.com/", false},
		{"empty path", "https://x.com", false},
		{"tag listing", "https://x.com/tag/news", false},
		{"category listing", "https://x.com/category/shoes/running", false},
		{"search results", "https://x.com/search/widgets", false},
		{"pagination", "https://x.com/page/4", false},
		{"sorted listing", "https://x.com/products?sort=price", false},
		{"filtered listing", "https://x.com/products?filter=blue", false},
		{"blog post", "https://x.com/blog/my-post", true},
		{"product page", "https://x.com/product/widget-9000", true},
		{"dated post", "https://x.com/2024/update", true},
		{"blog with year", "https://x.com/blog/2024/post", true},
		{"deep path fallback", "https://x.com/a/b", true},
		{"shallow path", "https://x.com/a", false},
		{"unparseable", "https://x.com/%zz", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, IsLikelyContentPage(tc.url))
		})
	}
}

func TestJunkBeatsContentFragment(t *testing.T) {
	t.Parallel()

	// Junk fragments are checked before content fragments, so a blog tag
	// listing stays excluded even though it contains /blog/.
	require.False(t, IsLikelyContentPage("https://x.com/blog/tag/news"))
}
