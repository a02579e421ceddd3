package datatest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"testing"
)

// Path is a parameter type that receives the file path itself rather than
// the file's contents.
type Path string

// PathDecoder is implemented by pointer receivers of user types that know
// how to build themselves from a test file.
type PathDecoder interface {
	DecodePath(path string) error
}

// Derive converts a file path into a value of type T. Supported types are
// string and []byte (file contents), Path (the path), io.Reader (a reader
// over the contents) and any type whose pointer implements PathDecoder.
//
// Parameters declared as pointers are derived as their element type; the
// generated adapter takes the address of the derived value.
func Derive[T any](path string) (T, error) {
	var out T
	switch p := any(&out).(type) {
	case PathDecoder:
		if err := p.DecodePath(path); err != nil {
			return out, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	case *Path:
		*p = Path(path)
	case *string:
		data, err := os.ReadFile(path)
		if err != nil {
			return out, fmt.Errorf("failed to read %s: %w", path, err)
		}
		*p = string(data)
	case *[]byte:
		data, err := os.ReadFile(path)
		if err != nil {
			return out, fmt.Errorf("failed to read %s: %w", path, err)
		}
		*p = data
	case *io.Reader:
		data, err := os.ReadFile(path)
		if err != nil {
			return out, fmt.Errorf("failed to read %s: %w", path, err)
		}
		*p = bytes.NewReader(data)
	default:
		return out, fmt.Errorf("cannot derive %T from a path; implement datatest.PathDecoder on its pointer", out)
	}
	return out, nil
}

// MustDerive is Derive for adapters: a failure stops the running test.
func MustDerive[T any](tb testing.TB, path string) T {
	tb.Helper()
	v, err := Derive[T](path)
	if err != nil {
		tb.Fatalf("datatest: %v", err)
	}
	return v
}

// AssertResult reports a non-nil error returned by a test function as a
// test failure.
func AssertResult(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatalf("test returned an error: %v", err)
	}
}

// RequireCases returns cases unchanged, or panics when it is empty: a
// case-driven test that produces no cases is a broken test, not a passing one.
func RequireCases(name string, cases []CaseTestCase) []CaseTestCase {
	if len(cases) == 0 {
		panic(fmt.Sprintf("datatest: %s: no test cases were found!", name))
	}
	return cases
}
