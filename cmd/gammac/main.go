package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	gamma "github.com/freixas/gamma-sub002"
	"github.com/freixas/gamma-sub002/internal/watch"
)

const (
	appName     = "gammac"
	historyFile = ".gamma_history"
	promptMain  = "gamma> "
	promptCont  = "  ...> "
)

var (
	banner   = fmt.Sprintf("Gamma %s compiler REPL\nEach entry is compiled and its h-code printed.\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", gamma.Version)
	helpText = `
REPL commands:
  :quit    Exit the REPL
  :help    Show this help
`
)

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "compile":
		os.Exit(cmdCompile(os.Args[2:]))
	case "deps":
		os.Exit(cmdDeps(os.Args[2:]))
	case "watch":
		os.Exit(cmdWatch(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(gamma.Version)
		return
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Gamma script compiler %s (built %s)

Usage:
  %s compile [-lineinfo=false] [-color] <file.gamma|bundle.txtar>   Print the h-code of a script.
  %s deps <file.gamma|bundle.txtar>                                 List included and external files.
  %s watch <file.gamma>                                             Recompile whenever the script or a dependency changes.
  %s repl                                                           Compile statements interactively.
  %s version                                                        Print the compiled version

Environment:
  %s  include search roots
  %s  %s  %s

`, gamma.Version, gamma.BuildDate, appName, appName, appName, appName, appName,
		gamma.EnvPath, gamma.EnvMaxIncludeDepth, gamma.EnvLineInfo, gamma.EnvDebug)
}

// compileFile compiles a script file, or the first file of a txtar bundle
// with the bundle's other files available to include.
func compileFile(file string, opts gamma.Options) (*gamma.Program, error) {
	if strings.HasSuffix(file, ".txtar") {
		ar, err := gamma.LoadArchive(file)
		if err != nil {
			return nil, err
		}
		name, src, ok := ar.Main()
		if !ok {
			return nil, fmt.Errorf("%s: archive has no files", file)
		}
		opts.Resolver = ar
		return gamma.Compile(name, src, opts)
	}

	abs := fileAbsOrOrig(file)
	b, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", file, err)
	}
	return gamma.Compile(abs, string(b), opts)
}

func fileAbsOrOrig(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func reportError(err error) {
	fmt.Fprintln(os.Stderr, gamma.WrapError(err).Error())
}

// -----------------------------------------------------------------------------
// compile
// -----------------------------------------------------------------------------

func cmdCompile(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	lineInfo := fs.Bool("lineinfo", true, "emit line-info markers")
	color := fs.Bool("color", false, "colorize the disassembly")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s compile [-lineinfo=false] [-color] <file>\n", appName)
		return 2
	}

	opts := gamma.OptionsFromEnv()
	opts.LineInfo = *lineInfo
	gamma.EnableColor = *color

	prog, err := compileFile(fs.Arg(0), opts)
	if err != nil {
		reportError(err)
		return 1
	}
	if err := printProgram(os.Stdout, prog); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	return 0
}

func printProgram(w io.Writer, prog *gamma.Program) error {
	if err := gamma.Format(w, prog.Code); err != nil {
		return err
	}
	for _, d := range prog.Dependencies {
		fmt.Fprintf(w, "; depends on %s\n", d)
	}
	keys := make([]string, 0, len(prog.Settings))
	for k := range prog.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "; set %s = %s\n", k, prog.Settings[k])
	}
	var flags []string
	if prog.HasAnimationStatement {
		flags = append(flags, "animation-statement")
	}
	if prog.HasAnimationVariable {
		flags = append(flags, "animation-variable")
	}
	if prog.HasDisplayVariable {
		flags = append(flags, "display-variable")
	}
	if len(flags) > 0 {
		fmt.Fprintf(w, "; flags %s\n", strings.Join(flags, " "))
	}
	if s, ok := prog.StyleSheet.(fmt.Stringer); ok {
		for _, line := range strings.Split(strings.TrimRight(s.String(), "\n"), "\n") {
			fmt.Fprintf(w, "; style %s\n", line)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// deps
// -----------------------------------------------------------------------------

func cmdDeps(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s deps <file>\n", appName)
		return 2
	}
	prog, err := compileFile(args[0], gamma.OptionsFromEnv())
	if err != nil {
		reportError(err)
		return 1
	}
	for _, d := range prog.Dependencies {
		fmt.Println(d)
	}
	return 0
}

// -----------------------------------------------------------------------------
// watch
// -----------------------------------------------------------------------------

func cmdWatch(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s watch <file>\n", appName)
		return 2
	}
	file := fileAbsOrOrig(args[0])
	opts := gamma.OptionsFromEnv()

	w, err := watch.New(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	defer w.Close()

	build := func() {
		files := []string{file}
		prog, err := compileFile(file, opts)
		if err != nil {
			reportError(err)
		} else {
			fmt.Printf("%s: compiled %s (%d h-codes, %d dependencies)\n", appName, file, len(prog.Code), len(prog.Dependencies))
			if !strings.HasSuffix(file, ".txtar") {
				files = append(files, prog.Dependencies...)
			}
		}
		for _, f := range files {
			if _, err := os.Stat(f); err != nil {
				continue // URLs and vanished files
			}
			if err := w.Add(f); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	build()
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	for {
		select {
		case <-ctx.Done():
			return 0
		case err := <-errc:
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
				return 1
			}
			return 0
		case changed := <-w.Events():
			fmt.Printf("%s: %s changed\n", appName, changed)
			build()
		}
	}
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(_ []string) int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	opts := gamma.OptionsFromEnv()
	opts.LineInfo = false
	gamma.EnableColor = true

	for {
		code, ok := readByParseProbe(ln, opts, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(code)
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			case ":help":
				fmt.Print(helpText)
			default:
				fmt.Printf("unknown command. Type :quit to exit.\n")
			}
			continue
		}
		if trimmed == "" {
			continue
		}

		prog, err := gamma.Compile("<repl>", code, opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(gamma.WrapError(err).Error()))
			continue
		}
		_ = printProgram(os.Stdout, prog)
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
	return 0
}

// readByParseProbe reads lines until they compile or fail for a reason other
// than running out of input.
func readByParseProbe(ln *liner.State, opts gamma.Options, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		_, perr := gamma.Compile("<repl>", src, opts)
		if perr != nil && gamma.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
