// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/notes-engine/pkg/types"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestDetect(t *testing.T) {
	wav := append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 32)...)
	mp3 := append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 32)...)

	tests := []struct {
		name    string
		file    string
		data    []byte
		want    types.SourceKind
		wantErr error
	}{
		{name: "pdf by content", file: "report.bin", data: []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"), want: types.SourcePDF},
		{name: "wav by content", file: "meeting.dat", data: wav, want: types.SourceAudio},
		{name: "mp3 by content", file: "standup", data: mp3, want: types.SourceAudio},
		{name: "plain text", file: "transcript.txt", data: []byte("SUMMARY\nWe met.\n"), want: types.SourceText},
		{name: "binary with audio extension", file: "call.m4a", data: []byte{0x00, 0x01, 0x02, 0xff, 0xfe, 0x00}, want: types.SourceAudio},
		{name: "binary with oga extension", file: "voice.oga", data: []byte{0x00, 0x01, 0x02, 0xff, 0xfe, 0x00}, want: types.SourceAudio},
		{name: "unknown binary", file: "blob.bin", data: []byte{0x00, 0x01, 0x02, 0xff, 0xfe, 0x00}, wantErr: types.ErrUnsupportedSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.data)
			got, err := Detect(path)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetect_MissingFile(t *testing.T) {
	_, err := Detect(filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrUnsupportedSource)
}

func TestTextConverter(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("line one\nline two\n"))
	got, err := TextConverter{}.Convert(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", got)

	bad := writeFile(t, "bad.txt", []byte{0xff, 0xfe, 0xfd})
	_, err = TextConverter{}.Convert(context.Background(), bad)
	assert.Error(t, err)
}

func TestPDFConverter_NotAPDF(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("this is not a pdf"))
	_, err := PDFConverter{}.Convert(context.Background(), path)
	assert.Error(t, err)
}

// fakeRuntime implements container.Runtime for testing.
type fakeRuntime struct {
	imageErr error
	output   string
	runErr   error
	gotImage string
	gotInput string
}

func (f *fakeRuntime) Name() string    { return "fake" }
func (f *fakeRuntime) Available() bool { return true }

func (f *fakeRuntime) ImageExists(image string) error {
	f.gotImage = image
	return f.imageErr
}

func (f *fakeRuntime) Run(_ context.Context, image string, stdin io.Reader, stdout io.Writer) error {
	f.gotImage = image
	data, _ := io.ReadAll(stdin)
	f.gotInput = string(data)
	if f.runErr != nil {
		return f.runErr
	}
	_, err := io.WriteString(stdout, f.output)
	return err
}

func TestNewMarkitdownConverter(t *testing.T) {
	t.Run("default image", func(t *testing.T) {
		rt := &fakeRuntime{}
		c, err := NewMarkitdownConverter(rt, "")
		require.NoError(t, err)
		assert.Equal(t, DefaultMarkitdownImage, c.image)
		assert.Equal(t, DefaultMarkitdownImage, rt.gotImage)
	})

	t.Run("missing image", func(t *testing.T) {
		rt := &fakeRuntime{imageErr: errors.New("not found")}
		_, err := NewMarkitdownConverter(rt, "registry.local/markitdown:1.0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not available in fake")
	})
}

func TestMarkitdownConverter_Convert(t *testing.T) {
	tests := []struct {
		name    string
		rt      *fakeRuntime
		want    string
		wantErr bool
	}{
		{name: "success", rt: &fakeRuntime{output: "# Roadmap\n\nShip it.\n"}, want: "# Roadmap\n\nShip it.\n"},
		{name: "empty output is not an error", rt: &fakeRuntime{}, want: ""},
		{name: "container failure", rt: &fakeRuntime{runErr: errors.New("exit status 1")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "deck.pdf", []byte("%PDF-1.4 fake"))
			c, err := NewMarkitdownConverter(tt.rt, "md:test")
			require.NoError(t, err)

			got, err := c.Convert(context.Background(), path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "%PDF-1.4 fake", tt.rt.gotInput)
			assert.Equal(t, "md:test", tt.rt.gotImage)
		})
	}
}

func TestNew(t *testing.T) {
	c, err := New(types.ConversionConfig{Backend: types.BackendNative})
	require.NoError(t, err)
	assert.IsType(t, PDFConverter{}, c)

	_, err = New(types.ConversionConfig{Backend: "grobid"})
	assert.Error(t, err)
}
