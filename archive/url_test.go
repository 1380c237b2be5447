package archive

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "simple path",
			url:  "https://x.com/page",
			want: "page.pdf",
		},
		{
			name: "nested path uses hyphens",
			url:  "https://cloud.google.com/docs/compute/instances",
			want: "docs-compute-instances.pdf",
		},
		{
			name: "disallowed characters stripped",
			url:  "https://x.com/a b_c!@#",
			want: "abc.pdf",
		},
		{
			name: "root path yields degenerate name",
			url:  "https://x.com/",
			want: ".pdf",
		},
		{
			name: "empty path yields degenerate name",
			url:  "https://x.com",
			want: ".pdf",
		},
		{
			name: "query ignored",
			url:  "https://x.com/page?hl=en&foo=bar",
			want: "page.pdf",
		},
		{
			name: "trailing slash trimmed",
			url:  "https://x.com/docs/guide/",
			want: "docs-guide.pdf",
		},
		{
			name: "unparseable url",
			url:  "://not a url",
			want: ".pdf",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, DeriveFilename(tc.url))
		})
	}
}

func TestDeriveFilenameDeterministic(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://docs.google.com/document/d/abc123/export",
		"https://x.com/",
		"https://x.com/a b_c!@#",
	}
	for _, u := range urls {
		require.Equal(t, DeriveFilename(u), DeriveFilename(u))
	}
}

func TestForceEnglish(t *testing.T) {
	t.Parallel()

	t.Run("adds hl when absent", func(t *testing.T) {
		t.Parallel()
		got, err := ForceEnglish("https://docs.google.com/document/d/1/export")
		require.NoError(t, err)
		require.Contains(t, got, "hl=en")
	})

	t.Run("overwrites existing hl and preserves the rest", func(t *testing.T) {
		t.Parallel()
		got, err := ForceEnglish("https://docs.google.com/d/1?hl=fr&foo=bar#sec")
		require.NoError(t, err)

		u, err := url.Parse(got)
		require.NoError(t, err)
		require.Equal(t, "/d/1", u.Path)
		require.Equal(t, "sec", u.Fragment)

		q := u.Query()
		require.Equal(t, []string{"en"}, q["hl"])
		require.Equal(t, []string{"bar"}, q["foo"])
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()
		once, err := ForceEnglish("https://docs.google.com/d/1?hl=ja&x=1")
		require.NoError(t, err)
		twice, err := ForceEnglish(once)
		require.NoError(t, err)
		require.Equal(t, once, twice)
	})

	t.Run("invalid url", func(t *testing.T) {
		t.Parallel()
		_, err := ForceEnglish("://bad")
		require.Error(t, err)
	})
}
