package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/memora/reflections/internal/pkg/utils"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConverter(t *testing.T, cmd string) *Converter {
	t.Helper()
	cfg := viper.New()
	cfg.Set("ffmpeg.cmd", cmd)
	cfg.Set("ffmpeg.dir", t.TempDir())
	res, err := NewConverter(cfg)
	require.Nil(t, err)
	return res
}

func TestNewConverter_Defaults(t *testing.T) {
	res, err := NewConverter(viper.New())
	require.Nil(t, err)
	assert.Equal(t, "ffmpeg", res.cmd)
	assert.Equal(t, os.TempDir(), res.dir)
	assert.True(t, res.timeout > 0)
}

func TestConvert_Fails(t *testing.T) {
	c := newTestConverter(t, "false")
	_, _, err := c.Convert(context.Background(), []byte("audio"), "rec.m4a")
	require.NotNil(t, err)
	var tErr *utils.ErrAudioConvert
	assert.True(t, errors.As(err, &tErr))
}

func TestConvert_Fails_NoCmd(t *testing.T) {
	c := newTestConverter(t, "no-such-transcoder-cmd")
	_, _, err := c.Convert(context.Background(), []byte("audio"), "rec.m4a")
	require.NotNil(t, err)
	var tErr *utils.ErrAudioConvert
	assert.True(t, errors.As(err, &tErr))
}

func TestConvert_CleansTempFiles(t *testing.T) {
	c := newTestConverter(t, "false")
	_, _, err := c.Convert(context.Background(), []byte("audio"), "rec.m4a")
	require.NotNil(t, err)
	files, err := os.ReadDir(c.dir)
	require.Nil(t, err)
	assert.Equal(t, 0, len(files))
}

func Test_makeArgs(t *testing.T) {
	args := makeArgs("/tmp/in.m4a", "/tmp/out.ogg")
	assert.Equal(t, []string{"-i", "/tmp/in.m4a", "-ar", "16000", "-ac", "1",
		"-c:a", "libvorbis", "-q:a", "4", "-y", "/tmp/out.ogg"}, args)
}

func Test_deriveName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "rec.m4a", want: "rec.ogg"},
		{name: "rec.ogg", want: "rec.ogg"},
		{name: "morning.notes.wav", want: "morning.notes.ogg"},
		{name: "noext", want: "noext.ogg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveName(tt.name))
		})
	}
}

func Test_tail(t *testing.T) {
	assert.Equal(t, "olia", tail("olia", 10))
	assert.Equal(t, "ia", tail("olia", 2))
}

func TestConvert_UniqueTempNames(t *testing.T) {
	dir := t.TempDir()
	cfg := viper.New()
	cfg.Set("ffmpeg.cmd", "false")
	cfg.Set("ffmpeg.dir", dir)
	c, err := NewConverter(cfg)
	require.Nil(t, err)
	// failed runs must not leave inputs that a concurrent run could collide with
	for i := 0; i < 3; i++ {
		_, _, err := c.Convert(context.Background(), []byte("audio"), "rec.m4a")
		require.NotNil(t, err)
	}
	files, err := os.ReadDir(dir)
	require.Nil(t, err)
	for _, f := range files {
		assert.Fail(t, "left over temp file", filepath.Join(dir, f.Name()))
	}
}
