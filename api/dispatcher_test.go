package api

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"github.com/xiaoyuanzhu-com/comix/archive"
	"github.com/xiaoyuanzhu-com/comix/library"
)

type fakeResolver struct {
	pages     map[[2]string][]string
	extracted map[string]bool
}

func (f *fakeResolver) Resolve(ctx context.Context, titleKey, fileKey string) ([]string, error) {
	pages, ok := f.pages[[2]string{titleKey, fileKey}]
	if !ok {
		return nil, archive.ErrNotFound
	}
	return pages, nil
}

func (f *fakeResolver) IsExtractedPage(page string) bool {
	return f.extracted[page]
}

// touchTree creates empty files at the given slash-separated paths under a temp root
func touchTree(t *testing.T, paths ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte("archive"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *fakeResolver) {
	t.Helper()
	root := touchTree(t,
		"Nexus/Nexus 01.cbz",
		"Nexus/Nexus 02.cbz",
		"Saga/Saga 01.cbz",
		"Page/Page 01.cbz",
	)
	index, err := library.Build(library.Config{Root: root, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	resolver := &fakeResolver{
		pages: map[[2]string][]string{
			{"nexus", "nexus-01cbz"}: {"/s/Nexus 01/001.jpg", "/s/Nexus 01/002.jpg", "/s/Nexus 01/003.jpg"},
			{"saga", "saga-01cbz"}:   {archive.ExtractFailedPage},
		},
		extracted: map[string]bool{
			"/s/Nexus 01/001.jpg": true,
			"/s/Nexus 01/002.jpg": true,
			"/s/Nexus 01/003.jpg": true,
		},
	}
	return NewDispatcher(index, resolver, zerolog.Nop()), resolver
}

func TestDispatchRootListing(t *testing.T) {
	d, _ := newTestDispatcher(t)

	for _, path := range []string{"/", "", "/unknown", "/unknown/deeper/still/more/x", "/issue/nexus", "/issue/nexus/a/b"} {
		t.Run(path, func(t *testing.T) {
			resp, ok := d.Dispatch(context.Background(), path).(RootListing)
			if !ok {
				t.Fatalf("Dispatch(%q) = %T, want RootListing", path, d.Dispatch(context.Background(), path))
			}
			var keys []string
			for _, title := range resp.Titles {
				keys = append(keys, title.Key)
			}
			if want := []string{"nexus", "page", "saga"}; !reflect.DeepEqual(keys, want) {
				t.Errorf("keys = %v, want %v", keys, want)
			}
		})
	}
}

func TestDispatchRootCounts(t *testing.T) {
	d, _ := newTestDispatcher(t)

	resp := d.Dispatch(context.Background(), "/").(RootListing)
	if resp.Titles[0].DisplayTitle != "Nexus" || resp.Titles[0].IssueCount != 2 {
		t.Errorf("first title = %+v, want Nexus with 2 issues", resp.Titles[0])
	}
}

func TestDispatchFavicon(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if _, ok := d.Dispatch(context.Background(), "/favicon.ico").(NotFound); !ok {
		t.Error("favicon.ico should be NotFound")
	}
}

func TestDispatchTitleListing(t *testing.T) {
	d, _ := newTestDispatcher(t)

	for _, path := range []string{"/nexus", "/nexus/", "/nexus/extra/segments"} {
		t.Run(path, func(t *testing.T) {
			resp, ok := d.Dispatch(context.Background(), path).(TitleListing)
			if !ok {
				t.Fatalf("Dispatch(%q) is not a TitleListing", path)
			}
			if resp.Key != "nexus" || len(resp.Issues) != 2 {
				t.Fatalf("listing = %+v, want nexus with 2 issues", resp)
			}
			first := resp.Issues[0]
			if first.FileKey != "nexus-01cbz" || first.Name != "Nexus 01.cbz" {
				t.Errorf("first issue = %+v", first)
			}
			if first.Size != "7 B" {
				t.Errorf("first issue size = %q, want 7 B", first.Size)
			}
		})
	}
}

func TestDispatchTitleShadowsPage(t *testing.T) {
	d, _ := newTestDispatcher(t)

	// "page" is a title key here, so the title rule wins
	if _, ok := d.Dispatch(context.Background(), "/page/nexus/nexus-01cbz/1").(TitleListing); !ok {
		t.Error("a title keyed \"page\" should take precedence over page content")
	}
}

func TestDispatchIssueListing(t *testing.T) {
	d, _ := newTestDispatcher(t)

	resp, ok := d.Dispatch(context.Background(), "/issue/nexus/nexus-01cbz/").(IssueListing)
	if !ok {
		t.Fatal("want IssueListing")
	}
	want := []PageLink{{1, "001.jpg"}, {2, "002.jpg"}, {3, "003.jpg"}}
	if !reflect.DeepEqual(resp.Pages, want) {
		t.Errorf("pages = %+v, want %+v", resp.Pages, want)
	}
}

func TestDispatchIssueNotFound(t *testing.T) {
	d, _ := newTestDispatcher(t)

	for _, path := range []string{"/issue/nexus/missing", "/issue/missing/nexus-01cbz"} {
		if _, ok := d.Dispatch(context.Background(), path).(NotFound); !ok {
			t.Errorf("Dispatch(%q) should be NotFound", path)
		}
	}
}

func TestDispatchFailedRarListsPlaceholder(t *testing.T) {
	d, _ := newTestDispatcher(t)

	resp, ok := d.Dispatch(context.Background(), "/issue/saga/saga-01cbz").(IssueListing)
	if !ok {
		t.Fatal("want IssueListing")
	}
	if len(resp.Pages) != 1 || resp.Pages[0].Label != archive.ExtractFailedPage {
		t.Errorf("pages = %+v, want the placeholder", resp.Pages)
	}
}

func TestDispatchPage(t *testing.T) {
	d, _ := newTestDispatcher(t)

	tests := []struct {
		path string
		want string // empty means NotFound
	}{
		{"/page/nexus/nexus-01cbz/1", "/s/Nexus 01/001.jpg"},
		{"/page/nexus/nexus-01cbz/3", "/s/Nexus 01/003.jpg"},
		{"/page/nexus/nexus-01cbz/0", ""},
		{"/page/nexus/nexus-01cbz/4", ""},
		{"/page/nexus/nexus-01cbz/999", ""},
		{"/page/nexus/nexus-01cbz/-1", ""},
		{"/page/nexus/nexus-01cbz/two", ""},
		{"/page/nexus/missing/1", ""},
		{"/page/saga/saga-01cbz/1", ""},
	}

	// without a title keyed "page"
	d.index = mustIndex(t, touchTree(t, "Nexus/Nexus 01.cbz", "Saga/Saga 01.cbz"))

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := d.Dispatch(context.Background(), tt.path)
			if tt.want == "" {
				if _, ok := resp.(NotFound); !ok {
					t.Errorf("Dispatch(%q) = %T, want NotFound", tt.path, resp)
				}
				return
			}
			page, ok := resp.(PageContent)
			if !ok {
				t.Fatalf("Dispatch(%q) = %T, want PageContent", tt.path, resp)
			}
			if page.FilePath != tt.want {
				t.Errorf("FilePath = %q, want %q", page.FilePath, tt.want)
			}
		})
	}
}

func mustIndex(t *testing.T, root string) *library.Index {
	t.Helper()
	index, err := library.Build(library.Config{Root: root, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return index
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/", nil},
		{"", nil},
		{"/a", []string{"a"}},
		{"//a///b/", []string{"a", "b"}},
		{"/issue/t/f/", []string{"issue", "t", "f"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := splitPath(tt.path); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
