package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatBytes(t *testing.T) {
	require.Equal(t, "69B", FormatBytes(69))
	require.Equal(t, "64KB", FormatBytes(64*KB))
	require.Equal(t, "1.50MB", FormatBytes(MB+MB/2))
	require.Equal(t, "2GB", FormatBytes(2*GB))
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"4096", 4096},
		{"12B", 12},
		{"64KB", 64 * KB},
		{"64kb", 64 * KB},
		{" 2 MB ", 2 * MB},
		{"1.5MB", MB + MB/2},
		{"1TB", TB},
	}

	for _, tt := range tests {
		got, err := ParseBytes(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}

	for _, in := range []string{"", "KB", "lots", "-1KB", "99999999999999999999TB"} {
		_, err := ParseBytes(in)
		require.Error(t, err, in)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, KB, 3 * MB, 5 * GB} {
		got, err := ParseBytes(FormatBytes(n))
		require.NoError(t, err)
		require.Equal(t, uint64(n), got)
	}
}

func TestFormatDurationHMS(t *testing.T) {
	require.Equal(t, "00:00:00", FormatDurationHMS(0))
	require.Equal(t, "01:02:03", FormatDurationHMS(time.Hour+2*time.Minute+3*time.Second))
	require.Equal(t, "00:00:02", FormatDurationHMS(1500*time.Millisecond))
}
