package dfxml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestWriteReadReport(t *testing.T) {
	var buf bytes.Buffer

	w := NewDFXMLWriter(&buf)
	require.NoError(t, w.WriteHeader(DFXMLHeader{
		XmlOutput: XmlOutputVersion,
		Metadata:  DefaultMetadata,
		Creator: Creator{
			Package:              "pnglet",
			Version:              "dev",
			ExecutionEnvironment: GetExecEnv(),
		},
		Source: Source{ImageFilename: "/tmp/blob.bin", ImageSize: 4096},
	}))

	files := []FileObject{
		{
			Filename: "f00000010.png",
			FileSize: 69,
			Image:    &Image{Width: 1, Height: 1, BitDepth: 8, ColorType: "rgb", Chunks: 3, Decoded: true},
			ByteRuns: ByteRuns{Runs: []ByteRun{{Offset: 0, ImgOffset: 16, Length: 69}}},
		},
		{
			Filename: "f00000200.png",
			FileSize: 120,
			ByteRuns: ByteRuns{Runs: []ByteRun{{Offset: 0, ImgOffset: 512, Length: 120}}},
		},
	}
	for _, fo := range files {
		require.NoError(t, w.WriteFileObject(fo))
	}
	require.NoError(t, w.Close())

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "<?xml"))
	require.Equal(t, 1, strings.Count(out, "<dfxml"))
	require.True(t, strings.HasSuffix(strings.TrimSpace(out), "</dfxml>"))

	report, err := ReadReport(&buf)
	require.NoError(t, err)
	require.Equal(t, Source{ImageFilename: "/tmp/blob.bin", ImageSize: 4096}, report.Source)

	if diff := cmp.Diff(files, report.Files, cmpopts.IgnoreFields(FileObject{}, "XMLName")); diff != "" {
		t.Errorf("file objects mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFileObjectsMalformed(t *testing.T) {
	_, err := ReadFileObjects(strings.NewReader("<dfxml><fileobject><filesize>abc</filesize></fileobject></dfxml>"))
	require.Error(t, err)

	files, err := ReadFileObjects(strings.NewReader("<dfxml></dfxml>"))
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestParseOSRelease(t *testing.T) {
	require.Equal(t, "Debian GNU/Linux 12 (bookworm)", parseOSRelease(strings.NewReader(
		"NAME=\"Debian GNU/Linux\"\nPRETTY_NAME=\"Debian GNU/Linux 12 (bookworm)\"\nID=debian\n")))
	require.Equal(t, "Alpine Linux", parseOSRelease(strings.NewReader("NAME=\"Alpine Linux\"\n")))
	require.Equal(t, unknown, parseOSRelease(strings.NewReader("garbage\n")))
}
