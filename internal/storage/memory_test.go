package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryProviderRoundTrip(t *testing.T) {
	t.Parallel()

	provider := NewMemoryProvider()
	require.NoError(t, provider.Save(context.Background(), "pages/a.html", []byte("<html/>")))

	data, ok := provider.Get("pages/a.html")
	require.True(t, ok)
	require.Equal(t, []byte("<html/>"), data)
	require.Equal(t, 1, provider.Len())

	_, ok = provider.Get("pages/missing.html")
	require.False(t, ok)
	require.NoError(t, provider.Close())
}

func TestMemoryProviderCopiesData(t *testing.T) {
	t.Parallel()

	provider := NewMemoryProvider()
	buf := []byte("original")
	require.NoError(t, provider.Save(context.Background(), "obj", buf))
	buf[0] = 'X'

	data, ok := provider.Get("obj")
	require.True(t, ok)
	require.Equal(t, []byte("original"), data)
}
