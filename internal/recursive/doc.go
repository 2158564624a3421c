// Package recursive parses one maximal expression of a recursive grammar
// family without a precedence table.
//
// Every construct of a family plays exactly one role: Prefix (wraps the
// following operand), Base (atomic term), Suffix (wraps the preceding
// operand) or Infix (joins two operands). A parse has the shape
//
//	Prefix* Base Suffix* (Infix Prefix* Base Suffix*)*
//
// Where two roles match the same input, the engine peeks past the candidate
// to decide: a Prefix is only a Prefix if another Base follows the would-be
// Base, and an Infix is only an Infix if a Prefix or Base follows it.
// A lookahead result is kept and handed to the term that starts at the same
// position, so no input is parsed twice however deep the chains nest.
//
// Tags visible where a chain starts stay in force for every role attempt of
// that chain. Delimited sub-expressions start chains of their own and do not
// inherit them.
package recursive
