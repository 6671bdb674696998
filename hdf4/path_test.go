package hdf4

import (
	"errors"
	"slices"
	"testing"
)

func TestParseAttrPath(t *testing.T) {
	tests := []struct {
		path       string
		wantObject string
		wantAttr   string
		wantErr    bool
	}{
		{"/@File Label #0", "/", "File Label #0", false},
		{"/temp@units", "/temp", "units", false},
		{"/group/temp@scale", "/group/temp", "scale", false},
		{"temp@units", "/temp", "units", false},
		{"/g/@x", "/g", "x", false},
		{"", "", "", true},
		{"/path/no/at", "", "", true},
		{"/path@", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			obj, attr, err := ParseAttrPath(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPath) {
					t.Errorf("expected ErrInvalidPath for %q, got %v", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tt.path, err)
			}
			if obj != tt.wantObject {
				t.Errorf("object path: got %q, want %q", obj, tt.wantObject)
			}
			if attr != tt.wantAttr {
				t.Errorf("attr name: got %q, want %q", attr, tt.wantAttr)
			}
		})
	}
}

func TestJoinAttrPath(t *testing.T) {
	tests := []struct {
		objectPath string
		attrName   string
		want       string
	}{
		{"/", "attr", "/@attr"},
		{"/temp", "units", "/temp@units"},
		{"/group/temp", "scale", "/group/temp@scale"},
	}

	for _, tt := range tests {
		if got := JoinAttrPath(tt.objectPath, tt.attrName); got != tt.want {
			t.Errorf("JoinAttrPath(%q, %q) = %q, want %q", tt.objectPath, tt.attrName, got, tt.want)
		}
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/", []string{}},
		{"", []string{}},
		{"/foo", []string{"foo"}},
		{"/foo/bar/", []string{"foo", "bar"}},
		{"foo//bar", []string{"foo", "bar"}},
		{"/x (dimension)", []string{"x (dimension)"}},
	}

	for _, tt := range tests {
		if got := SplitPath(tt.path); !slices.Equal(got, tt.want) {
			t.Errorf("SplitPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCleanPath(t *testing.T) {
	tests := map[string]string{
		"":      "/",
		"/":     "/",
		"a":     "/a",
		"/a/b/": "/a/b",
		"/a/b":  "/a/b",
	}
	for in, want := range tests {
		if got := CleanPath(in); got != want {
			t.Errorf("CleanPath(%q) = %q, want %q", in, got, want)
		}
	}
}
