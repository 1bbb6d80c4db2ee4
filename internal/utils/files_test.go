package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/tabprofile/internal/utils"
)

func TestSafeWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	if err := utils.SafeWriteFile(path, []byte("{}")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "{}" {
		t.Fatalf("content = %q", b)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"rows": 3})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "{\n  \"rows\": 3\n}" {
		t.Fatalf("got %q", b)
	}
}

func TestReportPath(t *testing.T) {
	cases := []struct {
		input, dir, ext, want string
	}{
		{"data/sales.csv", "", "json", filepath.Join("data", "sales.profile.json")},
		{"data/sales.csv", "out", ".yaml", filepath.Join("out", "sales.profile.yaml")},
		{"book.xlsx", "", "md", "book.profile.md"},
	}
	for _, c := range cases {
		if got := utils.ReportPath(c.input, c.dir, c.ext); got != c.want {
			t.Errorf("ReportPath(%q, %q, %q) = %q, want %q", c.input, c.dir, c.ext, got, c.want)
		}
	}
}
