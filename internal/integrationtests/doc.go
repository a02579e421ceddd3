// Package integrationtests runs the generator end to end over throwaway
// modules and checks the code it writes.
package integrationtests
