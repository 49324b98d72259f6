// Package overrides loads the operator-supplied exception table consulted
// before cache or network lookup: a title can be suppressed entirely or
// pinned to an exact catalog ID.
package overrides
