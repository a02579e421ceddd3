// Package app contains the generator's core logic. It defines the App
// struct, its configuration and the generation lifecycle: load every
// package directory, collect declarations from all loaders, match them
// against their functions, render the generated file and either write it
// or, in check mode, diff it against the file on disk. It is decoupled
// from the command-line entrypoint.
package app
