package gosrc

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"os"
	pathpkg "path"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/hashicorp/hcl/v2"
	"github.com/jcape/datatest/internal/annotation"
	"github.com/jcape/datatest/internal/ctxlog"
	"github.com/jcape/datatest/internal/fsutil"
)

// DirectivePrefix starts every datatest directive comment.
const DirectivePrefix = "//datatest:"

// Package is one package clause found in a directory.
type Package struct {
	Dir  string
	Name string
	// ImportPath is the import path of the directory, with "_test" appended
	// for external test packages. It is empty outside a module.
	ImportPath string
	Fset       *token.FileSet
	Files      []*File
	Funcs      map[string]*Func
	// Siblings are the other packages found in the same directory.
	Siblings []*Package
}

// File is a parsed Go source file.
type File struct {
	Path    string
	AST     *ast.File
	Src     []byte
	Imports []Import
}

// Import is a single import spec. Name is empty for imports that use the
// package's own name.
type Import struct {
	Name string
	Path string
}

// Func is a top-level function declaration.
type Func struct {
	Name       string
	Decl       *ast.FuncDecl
	File       *File
	Directives []Directive
	Range      hcl.Range
}

// Directive is one `//datatest:<verb> <args>` comment line.
type Directive struct {
	Verb  string
	Args  annotation.Source
	Range hcl.Range
}

// Qualify returns the qualified name of a function in pkg.
func (p *Package) Qualify(fn string) string {
	if p.ImportPath == "" {
		return p.Name + "." + fn
	}
	return p.ImportPath + "." + fn
}

// Primary reports whether p sorts first among the packages of its
// directory. Directory-wide problems are reported once, by the primary.
func (p *Package) Primary() bool {
	for _, s := range p.Siblings {
		if s.Name < p.Name {
			return false
		}
	}
	return true
}

// HasFunc reports whether fn is declared by p or one of its siblings.
func (p *Package) HasFunc(fn string) bool {
	if _, ok := p.Funcs[fn]; ok {
		return true
	}
	for _, s := range p.Siblings {
		if _, ok := s.Funcs[fn]; ok {
			return true
		}
	}
	return false
}

// SortedFuncs returns the package's functions ordered by file and position.
func (p *Package) SortedFuncs() []*Func {
	funcs := make([]*Func, 0, len(p.Funcs))
	for _, f := range p.Funcs {
		funcs = append(funcs, f)
	}
	sort.Slice(funcs, func(i, j int) bool {
		a, b := funcs[i].Range, funcs[j].Range
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		return a.Start.Byte < b.Start.Byte
	})
	return funcs
}

// Load parses every .go file in dir except skipName and returns the
// packages found, sorted by name. Parse errors are reported as diagnostics;
// files that fail to parse are left out.
func Load(ctx context.Context, dir string, skipName string) ([]*Package, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading Go package directory.", "dir", dir)

	paths, err := fsutil.ListFilesByExtension(dir, ".go")
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Failed to read package directory",
			Detail:   err.Error(),
		}}
	}

	importPath, err := ImportPath(dir)
	if err != nil {
		logger.Debug("Directory is not inside a module; names are qualified by package name.", "dir", dir, "reason", err)
	}

	var diags hcl.Diagnostics
	fset := token.NewFileSet()
	byName := make(map[string]*Package)

	for _, path := range paths {
		if skipName != "" && strings.HasSuffix(path, string(os.PathSeparator)+skipName) {
			continue
		}
		src, err := os.ReadFile(path)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Failed to read source file",
				Detail:   err.Error(),
				Subject:  &hcl.Range{Filename: path},
			})
			continue
		}
		astFile, err := parser.ParseFile(fset, path, src, parser.ParseComments)
		if err != nil {
			diags = append(diags, scanDiagnostics(path, err)...)
			continue
		}
		if ast.IsGenerated(astFile) {
			logger.Debug("Skipping generated file.", "file", path)
			continue
		}

		name := astFile.Name.Name
		pkg, ok := byName[name]
		if !ok {
			pkg = &Package{Dir: dir, Name: name, Fset: fset, Funcs: make(map[string]*Func)}
			if importPath != "" {
				pkg.ImportPath = importPath
				if strings.HasSuffix(name, "_test") {
					pkg.ImportPath += "_test"
				}
			}
			byName[name] = pkg
		}

		file := &File{Path: path, AST: astFile, Src: src, Imports: fileImports(astFile)}
		pkg.Files = append(pkg.Files, file)
		diags = append(diags, pkg.collect(file)...)
	}

	pkgs := make([]*Package, 0, len(byName))
	for _, pkg := range byName {
		pkgs = append(pkgs, pkg)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
	for _, pkg := range pkgs {
		for _, other := range pkgs {
			if other != pkg {
				pkg.Siblings = append(pkg.Siblings, other)
			}
		}
	}

	logger.Debug("Go package directory loaded.", "dir", dir, "packages", len(pkgs), "files", len(paths))
	return pkgs, diags
}

// collect records the file's top-level functions and their directives, and
// warns about directives that are not attached to a function.
func (p *Package) collect(file *File) hcl.Diagnostics {
	var diags hcl.Diagnostics
	attached := make(map[*ast.CommentGroup]bool)

	for _, decl := range file.AST.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		fn := &Func{
			Name:  fd.Name.Name,
			Decl:  fd,
			File:  file,
			Range: p.rangeOf(fd.Name.Pos(), fd.Name.End()),
		}
		if fd.Doc != nil {
			attached[fd.Doc] = true
			fn.Directives = p.directives(fd.Doc)
		}
		if fd.Recv != nil {
			if len(fn.Directives) > 0 {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Directive on a method",
					Detail:   "datatest directives are only supported on top-level functions",
					Subject:  fn.Directives[0].Range.Ptr(),
				})
			}
			continue
		}
		if fn.Name == "init" || fn.Name == "_" {
			continue
		}
		p.Funcs[fn.Name] = fn
	}

	for _, group := range file.AST.Comments {
		if attached[group] {
			continue
		}
		for _, d := range p.directives(group) {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagWarning,
				Summary:  "Detached directive",
				Detail:   fmt.Sprintf("//datatest:%s is not part of a function's doc comment and is ignored", d.Verb),
				Subject:  d.Range.Ptr(),
			})
		}
	}
	return diags
}

func (p *Package) directives(group *ast.CommentGroup) []Directive {
	var out []Directive
	for _, c := range group.List {
		if !strings.HasPrefix(c.Text, DirectivePrefix) {
			continue
		}
		body := c.Text[len(DirectivePrefix):]
		verb, args, _ := strings.Cut(body, " ")
		argsAt := len(DirectivePrefix) + len(verb) + 1

		start := p.Fset.Position(c.Slash)
		d := Directive{
			Verb:  strings.TrimSpace(verb),
			Range: p.rangeOf(c.Slash, c.End()),
		}
		d.Args = annotation.Source{
			Filename: start.Filename,
			Start: hcl.Pos{
				Line:   start.Line,
				Column: start.Column + argsAt,
				Byte:   start.Offset + argsAt,
			},
			Text: args,
		}
		out = append(out, d)
	}
	return out
}

func (p *Package) rangeOf(from, to token.Pos) hcl.Range {
	start, end := p.Fset.Position(from), p.Fset.Position(to)
	return hcl.Range{
		Filename: start.Filename,
		Start:    hcl.Pos{Line: start.Line, Column: start.Column, Byte: start.Offset},
		End:      hcl.Pos{Line: end.Line, Column: end.Column, Byte: end.Offset},
	}
}

// RangeOf converts a node's extent into a source range.
func (p *Package) RangeOf(n ast.Node) hcl.Range {
	return p.rangeOf(n.Pos(), n.End())
}

// ImportName returns the local name under which file imports path, or ""
// when the file does not import it.
func (f *File) ImportName(path string) string {
	for _, imp := range f.Imports {
		if imp.Path != path {
			continue
		}
		if imp.Name != "" {
			return imp.Name
		}
		return AssumedName(path)
	}
	return ""
}

// AssumedName guesses the package name of an unnamed import from its path:
// the last element, skipping a major version suffix, without a "go-"
// prefix and cut at the first character that cannot appear in an
// identifier.
func AssumedName(importPath string) string {
	base := pathpkg.Base(importPath)
	if strings.HasPrefix(base, "v") {
		if _, err := strconv.Atoi(base[1:]); err == nil {
			if dir := pathpkg.Dir(importPath); dir != "." {
				base = pathpkg.Base(dir)
			}
		}
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexFunc(base, notIdentifier); i >= 0 {
		base = base[:i]
	}
	return base
}

func notIdentifier(r rune) bool {
	return !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
}

func fileImports(f *ast.File) []Import {
	imports := make([]Import, 0, len(f.Imports))
	for _, spec := range f.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		imp := Import{Path: path}
		if spec.Name != nil {
			imp.Name = spec.Name.Name
		}
		imports = append(imports, imp)
	}
	return imports
}

func scanDiagnostics(path string, err error) hcl.Diagnostics {
	list, ok := err.(scanner.ErrorList)
	if !ok {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Failed to parse Go file",
			Detail:   err.Error(),
			Subject:  &hcl.Range{Filename: path},
		}}
	}
	var diags hcl.Diagnostics
	for _, e := range list {
		pos := hcl.Pos{Line: e.Pos.Line, Column: e.Pos.Column, Byte: e.Pos.Offset}
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Failed to parse Go file",
			Detail:   e.Msg,
			Subject:  &hcl.Range{Filename: path, Start: pos, End: pos},
		})
	}
	return diags
}
