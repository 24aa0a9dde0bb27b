// Package formula parses an arithmetic formula against a header index,
// classifying each identifier as a column-bound variable or a free
// parameter, and evaluates it per observation row.
//
// Two resolvers implement the same Model contract: v1 is a hand-written
// grammar with a `^` exponent operator, v2 is the HCL native expression
// grammar (exponentiation is spelled pow(a, b) there).
package formula
