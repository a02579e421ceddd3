// Package cli turns datatestgen's command line into an app.Config. Flag and
// validation problems come back as an ExitError carrying the process exit
// code; -h prints the usage text and asks the caller to exit cleanly.
package cli
