package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/wasm-hints/hints"
	"github.com/wippyai/wasm-hints/text"
	"github.com/wippyai/wasm-hints/wasm"
)

var (
	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to wasm module")
		validate    = flag.Bool("validate", false, "Run semantic validation on hint sections")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: hints -wasm <file.wasm>            (print hint directives)")
		fmt.Fprintln(os.Stderr, "       hints -wasm <file.wasm> -validate  (check hint semantics)")
		fmt.Fprintln(os.Stderr, "       hints -wasm <file.wasm> -i         (interactive browser)")
		os.Exit(1)
	}

	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer l.Sync()
		wasm.SetLogger(l)
	}

	if *interactive {
		if err := runInteractive(*wasmFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*wasmFile, *validate); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(wasmFile string, validate bool) error {
	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	m, err := wasm.Scan(data)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	sections := m.HintSections()
	fmt.Printf("Module: %s\n", wasmFile)
	fmt.Printf("Hint sections: %d\n", len(sections))
	if len(sections) == 0 {
		return nil
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	rule := dimStyle.Render(strings.Repeat("-", min(width, 72)))

	failed := false
	for _, cs := range sections {
		fmt.Println(rule)
		fmt.Println(sectionStyle.Render(cs.Name))

		sec, err := hints.DecodeSection(cs.Name, cs.Data)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("  decode failed: %v", err)))
			failed = true
			continue
		}
		fmt.Print(text.PrintSection(sec))

		if !validate {
			continue
		}
		diags := hints.ValidateIn(sec, m)
		if len(diags) == 0 {
			fmt.Println(okStyle.Render("  ok"))
			continue
		}
		for _, d := range diags {
			line := "  " + d.String()
			if d.Level == hints.LevelError {
				failed = true
				fmt.Println(errorStyle.Render(line))
			} else {
				fmt.Println(infoStyle.Render(line))
			}
		}
	}

	if failed {
		os.Exit(1)
	}
	return nil
}
