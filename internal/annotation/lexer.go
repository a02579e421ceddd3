package annotation

import (
	"go/scanner"
	"go/token"

	"github.com/hashicorp/hcl/v2"
)

type lexeme struct {
	tok    token.Token
	lit    string
	offset int
	end    int
}

// lex tokenizes src.Text with the Go scanner. Semicolons the scanner inserts
// at line ends are dropped; scan errors become diagnostics.
func lex(src Source) ([]lexeme, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	text := []byte(src.Text)

	fset := token.NewFileSet()
	file := fset.AddFile(src.Filename, -1, len(text))

	var s scanner.Scanner
	s.Init(file, text, func(pos token.Position, msg string) {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Malformed annotation",
			Detail:   msg,
			Subject:  src.rangeAt(pos.Offset, pos.Offset+1).Ptr(),
		})
	}, 0)

	var out []lexeme
	for {
		pos, tok, lit := s.Scan()
		offset := file.Offset(pos)
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		end := offset + len(lit)
		if lit == "" {
			end = offset + len(tok.String())
		}
		if tok == token.EOF {
			end = offset
		}
		out = append(out, lexeme{tok: tok, lit: lit, offset: offset, end: end})
		if tok == token.EOF {
			break
		}
	}
	return out, diags
}

// rangeAt converts byte offsets within the annotation text into a source
// range. Annotations are single-line, so columns advance with offsets.
func (src Source) rangeAt(start, end int) hcl.Range {
	if end < start {
		end = start
	}
	return hcl.Range{
		Filename: src.Filename,
		Start:    src.posAt(start),
		End:      src.posAt(end),
	}
}

func (src Source) posAt(offset int) hcl.Pos {
	return hcl.Pos{
		Line:   src.Start.Line,
		Column: src.Start.Column + offset,
		Byte:   src.Start.Byte + offset,
	}
}

// Range covers the whole annotation text.
func (src Source) Range() hcl.Range {
	return src.rangeAt(0, len(src.Text))
}
