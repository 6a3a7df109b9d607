package listfile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		data string
		ext  string
		want []string
	}{
		{
			name: "plain lines",
			data: "# reading list\ngo.dev\n\n  https://example.com/a  \r\n#skip\n",
			ext:  ".txt",
			want: []string{"go.dev", "https://example.com/a"},
		},
		{
			name: "no extension",
			data: "a.com",
			ext:  "",
			want: []string{"a.com"},
		},
		{
			name: "yaml sequence",
			data: "- go.dev\n- ' '\n- https://example.com\n",
			ext:  ".YML",
			want: []string{"go.dev", "https://example.com"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.data), tt.ext)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseYAMLNotSequence(t *testing.T) {
	if _, err := Parse([]byte("urls: [a.com]\n"), ".yaml"); err == nil {
		t.Error("expected error for a mapping")
	}
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabs.yaml")
	if err := os.WriteFile(path, []byte("- a.com\n- b.com\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a.com", "b.com"}) {
		t.Errorf("got %q", got)
	}

	if _, err := Read(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
