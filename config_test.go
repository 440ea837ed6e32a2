// config_test.go
package gamma

import (
	"os"
	"reflect"
	"strings"
	"testing"
)

func Test_Config_Defaults(t *testing.T) {
	for _, k := range []string{EnvPath, EnvMaxIncludeDepth, EnvDebug, EnvLineInfo} {
		t.Setenv(k, "") // restored after the test
		os.Unsetenv(k)
	}

	opts := OptionsFromEnv()
	if !opts.LineInfo {
		t.Fatal("line info should default to on")
	}
	if opts.MaxIncludeDepth != DefaultMaxIncludeDepth {
		t.Fatalf("MaxIncludeDepth = %d", opts.MaxIncludeDepth)
	}
	if opts.Debug != nil {
		t.Fatal("debug should default to off")
	}
	r, ok := opts.Resolver.(*FSResolver)
	if !ok || len(r.SearchPath) != 0 {
		t.Fatalf("resolver = %#v", opts.Resolver)
	}
}

func Test_Config_From_Env(t *testing.T) {
	sep := string(os.PathListSeparator)
	t.Setenv(EnvPath, "/a"+sep+sep+"/b")
	t.Setenv(EnvLineInfo, "false")
	t.Setenv(EnvMaxIncludeDepth, "4")
	t.Setenv(EnvDebug, "true")

	opts := OptionsFromEnv()
	if opts.LineInfo {
		t.Fatal("GAMMA_LINEINFO=false should disable line info")
	}
	if opts.MaxIncludeDepth != 4 {
		t.Fatalf("MaxIncludeDepth = %d", opts.MaxIncludeDepth)
	}
	if opts.Debug != os.Stderr {
		t.Fatal("GAMMA_DEBUG should trace to stderr")
	}
	if r := opts.Resolver.(*FSResolver); !reflect.DeepEqual(r.SearchPath, []string{"/a", "/b"}) {
		t.Fatalf("SearchPath = %v", r.SearchPath)
	}
}

func Test_Config_Debug_Trace(t *testing.T) {
	var b strings.Builder
	ar := ParseArchive([]byte("-- main.gamma --\ninclude \"lib\";\n-- lib.gamma --\nx = 1;\n"))
	name, src, _ := ar.Main()
	if _, err := Compile(name, src, Options{Resolver: ar, Debug: &b}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "gamma: ") || !strings.Contains(b.String(), "lib.gamma") {
		t.Fatalf("trace = %q", b.String())
	}
}

func Test_Suggest_ClosestMatch(t *testing.T) {
	cands := []string{"axes", "grid", "hypergrid", "while", "precision", "displayPrecision"}
	cases := []struct{ in, want string }{
		{"axs", "axes"},
		{"whle", "while"},
		{"precison", "precision"},
		{"grd", "grid"},
		{"zzzzzz", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := closestMatch(c.in, cands); got != c.want {
			t.Errorf("closestMatch(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	if got := closestMatch("x", nil); got != "" {
		t.Fatalf("no candidates: got %q", got)
	}
}

func Test_Config_Rereads_Env(t *testing.T) {
	t.Setenv(EnvMaxIncludeDepth, "3")
	if got := OptionsFromEnv().MaxIncludeDepth; got != 3 {
		t.Fatalf("MaxIncludeDepth = %d, want 3", got)
	}
	t.Setenv(EnvMaxIncludeDepth, "7")
	if got := OptionsFromEnv().MaxIncludeDepth; got != 7 {
		t.Fatalf("after change: MaxIncludeDepth = %d, want 7", got)
	}
}
