package cubemap

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func TestNewIsComplete(t *testing.T) {
	c := New(DefaultSize, color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0})
	for _, f := range Faces() {
		img := c.Face(f)
		if img == nil {
			t.Fatalf("face %v missing", f)
		}
		if b := img.Bounds(); b.Dx() != 2048 || b.Dy() != 2048 {
			t.Errorf("face %v is %dx%d; expected 2048x2048", f, b.Dx(), b.Dy())
		}
		if len(img.Pix) != 2048*2048*4 {
			t.Errorf("face %v has %d bytes; expected RGBA", f, len(img.Pix))
		}
		if px := img.RGBAAt(1000, 1000); px.A != 0xff || px.R != 0x80 {
			t.Errorf("face %v placeholder pixel %v is not opaque grey", f, px)
		}
		if c.State(f) != StatePlaceholder {
			t.Errorf("face %v state %v", f, c.State(f))
		}
	}
}

func TestFaceNames(t *testing.T) {
	expected := []string{"right", "left", "top", "bottom", "front", "back"}
	for i, f := range Faces() {
		if f.String() != expected[i] {
			t.Errorf("face %d is %q; expected %q", i, f, expected[i])
		}
	}

	sources := Sources("model/skybox/", ".jpg")
	if sources[FaceTop] != "model/skybox/top.jpg" {
		t.Errorf("unexpected source %q", sources[FaceTop])
	}
}

func TestApplySettlesOnce(t *testing.T) {
	c := New(4, color.Black)
	loaded := Placeholder(4, color.White)

	if err := c.Apply(FaceResult{Face: FaceFront, Image: loaded}); err != nil {
		t.Fatal(err)
	}
	if c.Face(FaceFront) != loaded || c.State(FaceFront) != StateLoaded {
		t.Error("front face not replaced")
	}
	if c.Face(FaceBack) == loaded {
		t.Error("other faces must keep the placeholder")
	}
	if err := c.Apply(FaceResult{Face: FaceFront, Image: loaded}); err == nil {
		t.Error("expected second result for the same face to be rejected")
	}

	if err := c.Apply(FaceResult{Face: FaceLeft, Err: errors.New("404")}); err != nil {
		t.Fatal(err)
	}
	if c.State(FaceLeft) != StateFailed || c.Face(FaceLeft) == loaded {
		t.Error("failed face must stay at its placeholder")
	}

	if c.Err(FaceLeft) == nil || c.Err(FaceFront) != nil {
		t.Errorf("failure reasons: left %v, front %v", c.Err(FaceLeft), c.Err(FaceFront))
	}

	// a wrongly sized image settles the face as failed
	if err := c.Apply(FaceResult{Face: FaceTop, Image: Placeholder(8, color.White)}); err != nil {
		t.Fatal(err)
	}
	if c.State(FaceTop) != StateFailed || c.Err(FaceTop) == nil {
		t.Errorf("size mismatch: state %v, err %v", c.State(FaceTop), c.Err(FaceTop))
	}
	if err := c.Apply(FaceResult{Face: FaceTop, Image: Placeholder(4, color.White)}); err == nil {
		t.Error("expected a settled failed face to reject later results")
	}

	states := c.States()
	if states["front"] != StateLoaded || states["left"] != StateFailed || states["top"] != StateFailed || states["right"] != StatePlaceholder {
		t.Errorf("unexpected states %v", states)
	}
}

func encodePNG(t *testing.T, size int, c color.Color) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, Placeholder(size, c)); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeResamples(t *testing.T) {
	img, err := Decode(bytes.NewReader(encodePNG(t, 3, color.RGBA{R: 200, A: 255})), 8)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 8, 8) {
		t.Errorf("bounds %v", img.Bounds())
	}
	if px := img.RGBAAt(4, 4); px.R < 190 || px.A != 255 {
		t.Errorf("unexpected resampled pixel %v", px)
	}

	if _, err := Decode(bytes.NewReader([]byte("not an image")), 8); err == nil {
		t.Error("expected decode error")
	}
}

type mapFetcher map[string][]byte

func (m mapFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	data, ok := m[location]
	if !ok {
		return nil, errors.Errorf("%s not found", location)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestLoaderDeliversEveryFace(t *testing.T) {
	sources := Sources("sky", ".png")
	fetcher := mapFetcher{}
	for _, f := range Faces() {
		if f != FaceBottom {
			fetcher[sources[f]] = encodePNG(t, 4, color.White)
		}
	}

	c := New(4, color.Black)
	l := &Loader{Fetcher: fetcher, Size: 4}
	seen := make(map[Face]bool)
	for r := range l.Start(context.Background(), sources) {
		if seen[r.Face] {
			t.Errorf("face %v delivered twice", r.Face)
		}
		seen[r.Face] = true
		if (r.Err != nil) != (r.Face == FaceBottom) {
			t.Errorf("face %v err=%v", r.Face, r.Err)
		}
		if err := c.Apply(r); err != nil {
			t.Error(err)
		}
	}
	if len(seen) != FacesCount {
		t.Errorf("got %d faces; expected %d", len(seen), FacesCount)
	}
	for _, f := range Faces() {
		expected := StateLoaded
		if f == FaceBottom {
			expected = StateFailed
		}
		if c.State(f) != expected {
			t.Errorf("face %v state %v; expected %v", f, c.State(f), expected)
		}
	}
}

func TestFetchers(t *testing.T) {
	face := encodePNG(t, 2, color.White)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "right.png"), face, 0644); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()

	if _, ok := FetcherFor(srv.URL, nil).(HTTPFetcher); !ok {
		t.Error("expected http fetcher for url base")
	}
	if _, ok := FetcherFor(dir, nil).(FileFetcher); !ok {
		t.Error("expected file fetcher for directory base")
	}

	for _, base := range []string{dir, srv.URL} {
		sources := Sources(base, ".png")
		fetcher := FetcherFor(base, srv.Client())

		r, err := fetcher.Fetch(context.Background(), sources[FaceRight])
		if err != nil {
			t.Fatalf("%s: %v", base, err)
		}
		data, _ := io.ReadAll(r)
		r.Close()
		if !bytes.Equal(data, face) {
			t.Errorf("%s: fetched %d bytes; expected %d", base, len(data), len(face))
		}

		if _, err := fetcher.Fetch(context.Background(), sources[FaceLeft]); err == nil {
			t.Errorf("%s: expected error for missing face", base)
		}
	}
}
