// Package cli turns command-line arguments into a validated run
// configuration.
package cli
