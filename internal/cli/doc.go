// Package cli turns command-line arguments into an app.Config.
package cli
