// Package match scores catalog records against a queried title and selects
// the best candidate, favoring shows that are actively airing.
package match
