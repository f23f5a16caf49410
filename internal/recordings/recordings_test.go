package recordings

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happycall-qa/happycall/internal/conf"
	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/happycall"
	"github.com/happycall-qa/happycall/internal/logger"
)

var fixedTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestStore(t *testing.T, maxSize int64) *Store {
	t.Helper()
	cfg := &conf.RecordingsSettings{
		Path:              filepath.Join(t.TempDir(), "uploads"),
		MaxSize:           maxSize,
		AllowedExtensions: []string{"mp3", "wav", "m4a", "ogg"},
	}
	s, err := New(cfg, logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil), WithClock(func() time.Time { return fixedTime }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func upload(name, content string) *happycall.RecordingUpload {
	return &happycall.RecordingUpload{Filename: name, Size: int64(len(content)), Content: strings.NewReader(content)}
}

// wavBytes encodes a short mono 16-bit WAV file.
func wavBytes(t *testing.T) []byte {
	t.Helper()
	p := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(p)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, 8000, 16, 1, 1)
	buf := &audio.IntBuffer{
		Data:           make([]int, 800),
		Format:         &audio.Format{SampleRate: 8000, NumChannels: 1},
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	return data
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	// "통화" in decomposed jamo form
	decomposed := "\u1110\u1169\u11bc\u1112\u116a.mp3"

	tests := []struct {
		in   string
		want string
	}{
		{"call.mp3", "call.mp3"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\agent\통화 녹음.m4a`, "통화_녹음.m4a"},
		{"/abs/path/a b.ogg", "a_b.ogg"},
		{".hidden.wav", "hidden.wav"},
		{"<script>.mp3", "script.mp3"},
		{decomposed, "통화.mp3"},
		{"..", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), "input %q", tt.in)
	}

	long := strings.Repeat("가", 100) + ".mp3"
	got := SanitizeFilename(long)
	assert.LessOrEqual(t, len(got), maxNameBytes)
	assert.True(t, strings.HasSuffix(got, ".mp3"))
}

func TestKey(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "42_20260314092653_call.mp3", Key(42, "call.mp3", fixedTime))
}

func TestStore_Save(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t, 64)

	key, err := s.Save(ctx, 7, upload("../통화.MP3", "id3"))
	require.NoError(t, err)
	assert.Equal(t, "7_20260314092653_통화.MP3", key)
	data, err := os.ReadFile(filepath.Join(s.Dir(), key))
	require.NoError(t, err)
	assert.Equal(t, "id3", string(data))

	_, err = s.Save(ctx, 7, upload("../통화.MP3", "id3"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConflict))

	_, err = s.Save(ctx, 7, upload("virus.exe", "MZ"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
	msg, ok := happycall.UserMessage(err)
	require.True(t, ok)
	assert.Equal(t, MsgExtensionNotAllowed+" (mp3, wav, m4a, ogg)", msg)

	_, err = s.Save(ctx, 8, upload("big.mp3", strings.Repeat("x", 65)))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	// declared size lies, content still capped
	lying := &happycall.RecordingUpload{Filename: "lie.mp3", Size: 1, Content: strings.NewReader(strings.Repeat("x", 65))}
	_, err = s.Save(ctx, 9, lying)
	require.Error(t, err)
	files, err := s.List()
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestStore_SaveWAV(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t, 0)

	valid := wavBytes(t)
	key, err := s.Save(ctx, 1, &happycall.RecordingUpload{Filename: "tone.wav", Size: int64(len(valid)), Content: bytes.NewReader(valid)})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, "_tone.wav"))

	_, err = s.Save(ctx, 2, upload("fake.wav", "not a riff header at all"))
	require.Error(t, err)
	msg, ok := happycall.UserMessage(err)
	require.True(t, ok)
	assert.Equal(t, MsgInvalidWAV, msg)

	files, err := s.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, key, files[0].Name)
}

func TestStore_SizeObserver(t *testing.T) {
	t.Parallel()

	var observed []int64
	cfg := &conf.RecordingsSettings{Path: t.TempDir(), AllowedExtensions: []string{"mp3"}}
	s, err := New(cfg, logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil),
		WithSizeObserver(func(n int64) { observed = append(observed, n) }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.Save(context.Background(), 1, upload("a.mp3", "12345"))
	require.NoError(t, err)
	_, err = s.Save(context.Background(), 2, upload("b.ogg", "12345"))
	require.Error(t, err)

	assert.Equal(t, []int64{5}, observed)
}

type staticKeys []string

func (k staticKeys) RecordingKeys(context.Context) ([]string, error) { return k, nil }

func TestStore_Orphans(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t, 0)

	kept, err := s.Save(ctx, 1, upload("a.mp3", "a"))
	require.NoError(t, err)
	orphan, err := s.Save(ctx, 2, upload("b.mp3", "b"))
	require.NoError(t, err)

	orphans, err := s.Orphans(ctx, staticKeys{kept, "5_20200101000000_gone.mp3"})
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, orphan, orphans[0].Name)

	removed, err := s.RemoveOrphans(ctx, staticKeys{kept})
	require.NoError(t, err)
	assert.Equal(t, []string{orphan}, removed)

	files, err := s.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, kept, files[0].Name)

	require.NoError(t, s.Remove(ctx, "missing.mp3"))
}
