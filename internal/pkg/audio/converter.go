package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/google/uuid"
	"github.com/memora/reflections/internal/pkg/utils"
	"github.com/spf13/viper"
)

// Converter normalizes uploaded audio to mono 16 kHz ogg/vorbis
// by invoking an external transcoder process
type Converter struct {
	cmd     string
	dir     string
	timeout time.Duration
}

// NewConverter creates converter instance
func NewConverter(cfg *viper.Viper) (*Converter, error) {
	res := &Converter{}
	res.cmd = cfg.GetString("ffmpeg.cmd")
	if res.cmd == "" {
		res.cmd = "ffmpeg"
	}
	res.dir = cfg.GetString("ffmpeg.dir")
	if res.dir == "" {
		res.dir = os.TempDir()
	}
	res.timeout = cfg.GetDuration("ffmpeg.timeout")
	if res.timeout <= 0 {
		res.timeout = time.Minute * 2
	}
	goapp.Log.Info().Str("cmd", res.cmd).Str("dir", res.dir).Msg("cfg: transcoder")
	return res, nil
}

// Convert transcodes data to mono 16 kHz ogg/vorbis, returns converted
// bytes and the derived output file name.
// Temp files get uuid based names - safe for concurrent requests sharing
// the same dir. Cleanup failures are swallowed.
func (c *Converter) Convert(ctx context.Context, data []byte, fileName string) ([]byte, string, error) {
	ext := filepath.Ext(fileName)
	inPath := filepath.Join(c.dir, fmt.Sprintf("input-%s%s", uuid.NewString(), ext))
	outPath := filepath.Join(c.dir, fmt.Sprintf("output-%s.ogg", uuid.NewString()))
	defer utils.RemoveQuiet(inPath)
	defer utils.RemoveQuiet(outPath)

	if err := utils.WriteFile(inPath, data); err != nil {
		return nil, "", utils.NewErrAudioConvert(fmt.Errorf("can't write input: %w", err))
	}

	ctx, cancelF := context.WithTimeout(ctx, c.timeout)
	defer cancelF()
	cmd := exec.CommandContext(ctx, c.cmd, makeArgs(inPath, outPath)...)
	goapp.Log.Info().Str("cmd", c.cmd).Str("in", inPath).Str("out", outPath).Msg("convert")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, "", utils.NewErrAudioConvert(fmt.Errorf("transcoder failed: %w: %s", err,
			goapp.Sanitize(tail(string(out), 500))))
	}
	res, err := os.ReadFile(outPath)
	if err != nil {
		return nil, "", utils.NewErrAudioConvert(fmt.Errorf("can't read output: %w", err))
	}
	return res, deriveName(fileName), nil
}

func makeArgs(inPath, outPath string) []string {
	return []string{"-i", inPath, "-ar", "16000", "-ac", "1", "-c:a", "libvorbis",
		"-q:a", "4", "-y", outPath}
}

func deriveName(fileName string) string {
	return strings.TrimSuffix(fileName, filepath.Ext(fileName)) + ".ogg"
}

func tail(s string, max int) string {
	if len(s) > max {
		return s[len(s)-max:]
	}
	return s
}
