package panorama

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/philipparndt/gopano/pkg/errdefs"
	"github.com/philipparndt/gopano/pkg/geometry"
)

// DefaultMaxTextureWidth bounds the decoded texture width
const DefaultMaxTextureWidth = 8192

// FileLoaderOptions configures a FileLoader
type FileLoaderOptions struct {
	// Workers is the number of concurrent decodes
	Workers int
	// MaxTextureWidth downscales wider images; zero uses the default
	MaxTextureWidth int
	// UseXMP reads GPano cropping data from the file
	UseXMP bool
}

// FileLoader loads panoramas from the local file system on a worker pool
type FileLoader struct {
	opts FileLoaderOptions
	pool worker.DynamicWorkerPool

	mu     sync.Mutex
	nextID int
	closed bool
	stop   chan struct{}
}

var errLoaderClosed = errors.New("file loader closed")

// NewFileLoader starts the worker pool
func NewFileLoader(opts FileLoaderOptions) *FileLoader {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.MaxTextureWidth <= 0 {
		opts.MaxTextureWidth = DefaultMaxTextureWidth
	}
	return &FileLoader{
		opts: opts,
		pool: worker.NewDynamicWorkerPool(opts.Workers, 16, time.Second),
		stop: make(chan struct{}),
	}
}

// Close stops the worker pool. Loads submitted afterwards fail.
func (l *FileLoader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.stop)
	l.pool.Stop()
}

func (l *FileLoader) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

type result struct {
	value any
	err   error
}

// run executes fn on the pool and waits for it or for ctx
func (l *FileLoader) run(ctx context.Context, fn func() (any, error)) (any, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, errLoaderClosed
	}
	id := l.nextID
	l.nextID++
	l.mu.Unlock()

	done := make(chan result, 1)
	task := worker.Task{
		ID: id,
		Do: func() (any, error) {
			if ctx.Err() != nil {
				done <- result{err: ctx.Err()}
				return nil, ctx.Err()
			}
			v, err := fn()
			done <- result{value: v, err: err}
			return v, err
		},
	}
	// SubmitTask blocks while the queue is full. A stopped pool never runs
	// queued tasks, so the wait below also ends on Close.
	go func() {
		if l.isClosed() {
			return
		}
		l.pool.SubmitTask(task)
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.stop:
		return nil, errLoaderClosed
	}
}

// LoadMetadata reads the image header and the embedded XMP data
func (l *FileLoader) LoadMetadata(ctx context.Context, path string) (Metadata, error) {
	v, err := l.run(ctx, func() (any, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return l.metadata(data)
	})
	if err != nil {
		return Metadata{}, &errdefs.LoadError{Stage: errdefs.StageMetadata, Path: path, Err: err}
	}
	return v.(Metadata), nil
}

func (l *FileLoader) metadata(data []byte) (Metadata, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Metadata{}, err
	}

	meta := Metadata{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Format:   format,
		PanoData: geometry.FullPanoData(cfg.Width, cfg.Height),
	}
	if l.opts.UseXMP {
		if pd, ok := parsePanoData(extractXMP(data)); ok {
			meta.PanoData = pd
			meta.HasXMP = true
		}
	}
	return meta, nil
}

// LoadTexture decodes the image, downscaling it to the maximum texture width
func (l *FileLoader) LoadTexture(ctx context.Context, path string, meta Metadata) (*Texture, error) {
	v, err := l.run(ctx, func() (any, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		img, _, err := image.Decode(f)
		if err != nil {
			return nil, err
		}
		return l.texture(path, img, meta), nil
	})
	if err != nil {
		return nil, &errdefs.LoadError{Stage: errdefs.StageTexture, Path: path, Err: err}
	}
	return v.(*Texture), nil
}

func (l *FileLoader) texture(path string, img image.Image, meta Metadata) *Texture {
	pd := meta.PanoData
	if pd.CroppedWidth == 0 {
		b := img.Bounds()
		pd = geometry.FullPanoData(b.Dx(), b.Dy())
	}

	img = downscale(img, l.opts.MaxTextureWidth)
	b := img.Bounds()
	return &Texture{
		Path:     path,
		Image:    img,
		PanoData: scalePanoData(pd, b.Dx(), b.Dy()),
	}
}

// downscale shrinks img to maxWidth keeping its aspect ratio
func downscale(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxWidth {
		return img
	}
	height := int(float64(b.Dy())*float64(maxWidth)/float64(b.Dx()) + 0.5)
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
