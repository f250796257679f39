// Package cli defines the walkin command tree.
package cli
