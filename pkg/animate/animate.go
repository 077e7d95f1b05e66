// Package animate turns a directory of rendered frames into one looping GIF.
//
// Frames are PNG files named by their timestamp (see timetricks.DotFormat), so
// sorting the names sorts the frames chronologically.
package animate

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spencer-p/tidedash/pkg/timetricks"
)

const (
	frameExt    = ".png"
	artifactExt = ".gif"
)

// ErrNoFrames is returned when there is nothing to assemble.
var ErrNoFrames = errors.New("animate: no frames to assemble")

// Options controls how frames are assembled.
type Options struct {
	// LoopCount is how many times the animation plays; 0 loops forever.
	LoopCount int
	// TotalDuration is split evenly between the frames.
	TotalDuration time.Duration
	// Animate false writes only the last frame.
	Animate bool
}

// ArtifactPath is where the animation for the named product lives.
func ArtifactPath(dir, name string) string {
	return filepath.Join(dir, name+artifactExt)
}

// FramePath is where the frame for dot time t lives.
func FramePath(dir string, t time.Time) string {
	return filepath.Join(dir, t.Format(timetricks.DotFormat)+frameExt)
}

// ClearFrames removes every frame in dir, creating dir if needed.
func ClearFrames(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create frame dir: %w", err)
	}
	frames, err := ListFrames(dir)
	if err != nil {
		return err
	}
	for _, f := range frames {
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("failed to remove old frame: %w", err)
		}
	}
	return nil
}

// ListFrames returns the frames in dir in chronological order.
func ListFrames(dir string) ([]string, error) {
	frames, err := filepath.Glob(filepath.Join(dir, "*"+frameExt))
	if err != nil {
		return nil, err
	}
	sort.Strings(frames)
	return frames, nil
}

// WriteFrame saves img as the frame for dot time t.
func WriteFrame(dir string, t time.Time, img image.Image) (string, error) {
	path := FramePath(dir, t)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to encode frame %s: %w", path, err)
	}
	return path, f.Close()
}

// FrameDelay is the display time of each of n frames.
func FrameDelay(total time.Duration, n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return total / time.Duration(n)
}

// Assemble reads frames in the given order and writes the artifact to out.
func Assemble(frames []string, out string, opts Options) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	if !opts.Animate {
		frames = frames[len(frames)-1:]
	}

	imgs := make([]image.Image, len(frames))
	for i, path := range frames {
		img, err := readFrame(path)
		if err != nil {
			return err
		}
		imgs[i] = img
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	// Write to a temporary file first so readers never see a partial GIF.
	tmp := out + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := Encode(f, imgs, opts); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, out)
}

// Encode writes imgs as one GIF.
func Encode(w io.Writer, imgs []image.Image, opts Options) error {
	if len(imgs) == 0 {
		return ErrNoFrames
	}
	delay := centiseconds(FrameDelay(opts.TotalDuration, len(imgs)))

	anim := &gif.GIF{LoopCount: gifLoopCount(opts.LoopCount)}
	for _, img := range imgs {
		anim.Image = append(anim.Image, paletted(img))
		anim.Delay = append(anim.Delay, delay)
	}
	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	return nil
}

// centiseconds rounds d to the GIF delay unit of 10ms.
func centiseconds(d time.Duration) int {
	return int((d + 5*time.Millisecond) / (10 * time.Millisecond))
}

// gifLoopCount maps a play count onto the GIF extension, which counts repeats
// after the first play and uses -1 to mean "play once".
func gifLoopCount(plays int) int {
	switch {
	case plays <= 0:
		return 0
	case plays == 1:
		return -1
	default:
		return plays - 1
	}
}

func paletted(img image.Image) *image.Paletted {
	b := img.Bounds()
	p := image.NewPaletted(b, palette.Plan9)
	draw.Draw(p, b, img, b.Min, draw.Src)
	return p
}

func readFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %s: %w", path, err)
	}
	return img, nil
}
