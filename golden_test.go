// golden_test.go
package gamma

import (
	"path/filepath"
	"strings"
	"testing"
)

// Each testdata/*.txtar holds a main script, the files it includes and a
// "want" file with the expected disassembly.
func Test_Golden_Disassembly(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no golden files")
	}
	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			ar, err := LoadArchive(file)
			if err != nil {
				t.Fatal(err)
			}
			want, err := ar.Read("want")
			if err != nil {
				t.Fatal(err)
			}
			name, src, _ := ar.Main()
			prog, err := Compile(name, src, Options{Resolver: ar})
			if err != nil {
				t.Fatalf("compile error:\n%s", WrapError(err))
			}
			got := Disassemble(prog.Code)
			if strings.TrimSpace(got) != strings.TrimSpace(want) {
				t.Fatalf("disassembly mismatch\nwant:\n%s\ngot:\n%s", want, got)
			}
		})
	}
}
