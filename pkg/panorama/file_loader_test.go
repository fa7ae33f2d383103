package panorama

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/philipparndt/gopano/pkg/errdefs"
)

func writePNG(t *testing.T, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	path := filepath.Join(t.TempDir(), "pano.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileLoaderLoadsPNG(t *testing.T) {
	path := writePNG(t, 64, 32)
	loader := NewFileLoader(FileLoaderOptions{UseXMP: true})
	defer loader.Close()

	meta, err := loader.LoadMetadata(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if meta.Width != 64 || meta.Height != 32 || meta.Format != "png" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.HasXMP || meta.PanoData.IsCropped() {
		t.Errorf("plain png must be a full panorama: %+v", meta.PanoData)
	}

	tex, err := loader.LoadTexture(context.Background(), path, meta)
	if err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	if tex.Path != path || tex.Image.Bounds().Dx() != 64 {
		t.Errorf("unexpected texture %v %v", tex.Path, tex.Image.Bounds())
	}
}

func TestFileLoaderDownscales(t *testing.T) {
	path := writePNG(t, 64, 32)
	loader := NewFileLoader(FileLoaderOptions{MaxTextureWidth: 16})
	defer loader.Close()

	meta, err := loader.LoadMetadata(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	tex, err := loader.LoadTexture(context.Background(), path, meta)
	if err != nil {
		t.Fatal(err)
	}

	b := tex.Image.Bounds()
	if b.Dx() != 16 || b.Dy() != 8 {
		t.Errorf("expected 16x8, got %v", b)
	}
	if tex.PanoData.FullWidth != 16 || tex.PanoData.CroppedHeight != 8 {
		t.Errorf("pano data not scaled: %+v", tex.PanoData)
	}
}

func TestFileLoaderErrors(t *testing.T) {
	loader := NewFileLoader(FileLoaderOptions{})

	_, err := loader.LoadMetadata(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"))
	var loadErr *errdefs.LoadError
	if !errors.As(err, &loadErr) || loadErr.Stage != errdefs.StageMetadata {
		t.Fatalf("expected metadata load error, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("cause lost: %v", err)
	}

	notImage := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(notImage, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loader.LoadMetadata(context.Background(), notImage); !errors.Is(err, errdefs.ErrLoad) {
		t.Errorf("expected load error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := loader.LoadMetadata(ctx, notImage); !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation, got %v", err)
	}

	loader.Close()
	if _, err := loader.LoadMetadata(context.Background(), notImage); !errors.Is(err, errdefs.ErrLoad) {
		t.Errorf("closed loader must fail, got %v", err)
	}
}

func TestFileLoaderCloseReleasesWaitingLoads(t *testing.T) {
	loader := NewFileLoader(FileLoaderOptions{Workers: 1})

	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	errc := make(chan error, 1)
	go func() {
		_, err := loader.run(context.Background(), func() (any, error) {
			close(started)
			<-release
			return nil, nil
		})
		errc <- err
	}()
	<-started

	// queued behind the busy worker, never picked up once the pool stops
	queued := make(chan error, 1)
	go func() {
		_, err := loader.run(context.Background(), func() (any, error) { return nil, nil })
		queued <- err
	}()

	loader.Close()

	for _, c := range []chan error{errc, queued} {
		select {
		case err := <-c:
			if !errors.Is(err, errLoaderClosed) {
				t.Errorf("expected closed loader error, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("load still waiting after Close")
		}
	}
}
