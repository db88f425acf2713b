package pbar

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderThrottled(t *testing.T) {
	var buf bytes.Buffer

	p := NewProgressBarState(&buf, 1024)
	p.Update(512, 1)
	require.Empty(t, buf.String())

	p.Render(true)
	require.Contains(t, buf.String(), "[==========>         ]")
	require.Contains(t, buf.String(), " 50% (512B/1KB)")
	require.Contains(t, buf.String(), "Images Found: 1")
}

func TestFinish(t *testing.T) {
	var buf bytes.Buffer

	p := NewProgressBarState(&buf, 2048)
	p.ImagesFound = 3
	p.Finish()

	out := buf.String()
	require.Contains(t, out, "[====================] 100% (2KB/2KB)")
	require.Contains(t, out, "Images Found: 3")
	require.Equal(t, byte('\n'), out[len(out)-1])
}

func TestEmptyTotal(t *testing.T) {
	var buf bytes.Buffer

	p := NewProgressBarState(&buf, 0)
	p.Render(true)
	require.Contains(t, buf.String(), "100%")
}
