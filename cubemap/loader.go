package cubemap

import (
	"context"
	"image"
	"image/draw"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

type Fetcher interface {
	Fetch(ctx context.Context, location string) (io.ReadCloser, error)
}

type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(location)
}

type HTTPFetcher struct {
	Client *http.Client
}

func (hf HTTPFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	client := hf.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("GET %s: %s", location, resp.Status)
	}
	return resp.Body, nil
}

func isURL(base string) bool {
	return strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://")
}

// FetcherFor picks http for URL bases and the filesystem otherwise.
func FetcherFor(base string, client *http.Client) Fetcher {
	if isURL(base) {
		return HTTPFetcher{Client: client}
	}
	return FileFetcher{}
}

// Sources names the six face files under base, e.g. "model/skybox/right.jpg".
func Sources(base, ext string) [FacesCount]string {
	var sources [FacesCount]string
	base = strings.TrimSuffix(base, "/")
	for _, f := range Faces() {
		sources[f] = base + "/" + f.String() + ext
	}
	return sources
}

// Decode reads an image and converts it to a size x size RGBA face, resampling if needed.
func Decode(r io.Reader, size int) (*image.RGBA, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode")
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	if b := src.Bounds(); b.Dx() == size && b.Dy() == size {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		log.Printf("[cubemap] resampling %s face %dx%d to %dx%d", format, b.Dx(), b.Dy(), size, size)
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	}
	return dst, nil
}

type Loader struct {
	Fetcher Fetcher
	Size    int
}

// Start fetches every face in its own goroutine. Results arrive in completion order and the
// channel is closed once all faces have finished, successfully or not.
func (l *Loader) Start(ctx context.Context, sources [FacesCount]string) <-chan FaceResult {
	results := make(chan FaceResult, FacesCount)

	var wg sync.WaitGroup
	for _, f := range Faces() {
		wg.Add(1)
		go func(f Face, location string) {
			defer wg.Done()
			img, err := l.load(ctx, location)
			if err != nil {
				err = errors.Wrapf(err, "face %v (%s)", f, location)
			}
			results <- FaceResult{Face: f, Image: img, Err: err}
		}(f, sources[f])
	}

	go func() {
		wg.Wait()
		close(results)
	}()
	return results
}

func (l *Loader) load(ctx context.Context, location string) (*image.RGBA, error) {
	r, err := l.Fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Decode(r, l.Size)
}
