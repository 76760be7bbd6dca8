// Package aggregates names the catalogue's write boundaries and the error
// vocabulary every layer above the store speaks.
package aggregates
