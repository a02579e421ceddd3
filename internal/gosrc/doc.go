// Package gosrc reads the Go files of one package directory and exposes the
// pieces the generator needs: top-level functions with their datatest
// directives, each file's imports, and the import path used to qualify test
// names.
//
// A directory may hold two packages, the package itself and its external
// `_test` package; Load returns one Package per package clause. Files that
// carry the standard "Code generated ... DO NOT EDIT." header are skipped, so
// the generator never reads its own output.
package gosrc
