package integrations

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
)

func testBook() data.Book {
	return data.Book{ID: "7", Title: "The Long Road", Description: "A <b>slow</b> story<script>alert(1)</script>"}
}

func testChapters() []data.Chapter {
	return []data.Chapter{
		{ID: "2", ChapterNumber: 2, Title: "Second", IsPublished: true, ContentData: data.SimpleContent("Later on.")},
		{ID: "1", ChapterNumber: 1, Title: "First", IsPublished: true, ContentData: data.SimpleContent("It began.\n\n<script>x()</script>Then more.")},
		{ID: "3", ChapterNumber: 3, Title: "Draft", IsPublished: false, ContentData: data.SimpleContent("secret draft")},
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func epubContents(t *testing.T, path string) string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open epub: %v", err)
	}
	defer r.Close()

	var all strings.Builder
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		all.WriteString(f.Name)
		all.WriteByte('\n')
		all.Write(b)
	}
	return all.String()
}

func TestCreateEPub(t *testing.T) {
	builder := NewEPubBuilder(t.TempDir())

	path, err := builder.CreateEPub(testBook(), "ada", testChapters(), nil)
	if err != nil {
		t.Fatalf("CreateEPub: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("epub not written: %v", err)
	}
	if !strings.HasSuffix(path, "The Long Road.epub") {
		t.Errorf("unexpected path %s", path)
	}

	contents := epubContents(t, path)
	for _, want := range []string{"Chapter 1: First", "Chapter 2: Second", "It began.", "Then more."} {
		if !strings.Contains(contents, want) {
			t.Errorf("epub missing %q", want)
		}
	}
	if strings.Contains(contents, "secret draft") {
		t.Error("unpublished chapter was exported")
	}
	if strings.Contains(contents, "<script>") {
		t.Error("script tag survived sanitizing")
	}
	if strings.Index(contents, "It began.") > strings.Index(contents, "Later on.") {
		t.Error("chapters not in number order")
	}
}

func TestCreateEPubNoPublishedChapters(t *testing.T) {
	builder := NewEPubBuilder(t.TempDir())
	_, err := builder.CreateEPub(testBook(), "", []data.Chapter{{ChapterNumber: 1}}, nil)
	if err == nil {
		t.Fatal("expected error without published chapters")
	}
}

func TestCreateEPubWithCover(t *testing.T) {
	dir := t.TempDir()
	builder := NewEPubBuilder(dir)

	path, err := builder.CreateEPub(testBook(), "ada", testChapters(), testPNG(t, 20, 30))
	if err != nil {
		t.Fatalf("CreateEPub: %v", err)
	}
	if !strings.Contains(epubContents(t, path), "cover.jpg") {
		t.Error("cover image missing from epub")
	}
	if _, err := os.Stat(strings.TrimSuffix(path, ".epub") + "-cover.jpg"); !os.IsNotExist(err) {
		t.Error("temporary cover file left behind")
	}
}

func TestCoverProcessorScalesDown(t *testing.T) {
	p := NewCoverProcessor(CoverSettings{MaxWidth: 60, MaxHeight: 90, Quality: 80})
	out, err := p.Process(testPNG(t, 120, 120))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not jpeg: %v", err)
	}
	if got := img.Bounds().Dx(); got != 60 {
		t.Errorf("width = %d, want 60", got)
	}
	if got := img.Bounds().Dy(); got != 60 {
		t.Errorf("height = %d, want 60", got)
	}
}

func TestCoverProcessorRejectsGarbage(t *testing.T) {
	p := NewCoverProcessor(DefaultCoverSettings())
	if _, err := p.Process([]byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFetchCover(t *testing.T) {
	body := testPNG(t, 2, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	got, err := FetchCover(t.Context(), srv.Client(), srv.URL+"/cover.png")
	if err != nil {
		t.Fatalf("FetchCover: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Error("cover bytes differ")
	}
	if _, err := FetchCover(t.Context(), srv.Client(), srv.URL+"/missing.png"); err == nil {
		t.Error("expected error for 404")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"Plain":          "Plain",
		"a/b:c?":         "a_b_c_",
		"  ..dots..  ":   "dots",
		"":               "book",
		`<x>|"y"*\z`:     "_x___y___z",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
