package app

import (
	"io"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const defaultWidth = 100

// diagPrinter writes diagnostics with source snippets. Source files are
// read lazily the first time a diagnostic points into them.
type diagPrinter struct {
	files  map[string]*hcl.File
	writer hcl.DiagnosticWriter
}

func newDiagPrinter(w io.Writer) *diagPrinter {
	p := &diagPrinter{files: make(map[string]*hcl.File)}
	width, color := terminalInfo(w)
	p.writer = hcl.NewDiagnosticTextWriter(w, p.files, uint(width), color)
	return p
}

func terminalInfo(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return defaultWidth, false
	}
	fd := f.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return defaultWidth, false
	}
	width, _, err := term.GetSize(int(fd))
	if err != nil || width <= 0 {
		width = defaultWidth
	}
	return width, true
}

func (p *diagPrinter) Print(diags hcl.Diagnostics) error {
	for _, d := range diags {
		for _, rng := range []*hcl.Range{d.Subject, d.Context} {
			if rng != nil {
				p.load(rng.Filename)
			}
		}
	}
	return p.writer.WriteDiagnostics(diags)
}

func (p *diagPrinter) load(filename string) {
	if filename == "" {
		return
	}
	if _, ok := p.files[filename]; ok {
		return
	}
	src, err := os.ReadFile(filename)
	if err != nil {
		// The writer omits the snippet for unknown files.
		p.files[filename] = nil
		return
	}
	p.files[filename] = &hcl.File{Bytes: src}
}
