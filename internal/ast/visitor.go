package ast

// Spacing is the layout wanted for the whitespace before a token.
type Spacing uint8

const (
	// SpaceNone glues the token to the previous one.
	SpaceNone Spacing = iota
	// SpaceOne is a single space.
	SpaceOne
	// SpaceLine starts a new line at the current indentation.
	SpaceLine
	// SpaceLineOut is SpaceLine for a closing token: comments before it stay
	// at the inner indentation.
	SpaceLineOut
	// SpaceAutoNone is SpaceNone unless the original broke the line here.
	SpaceAutoNone
	// SpaceAutoOne is SpaceOne unless the original broke the line here.
	SpaceAutoOne
	// SpaceKeep keeps the original whitespace.
	SpaceKeep
	// SpaceStart is the first token of a file.
	SpaceStart
)

func (s Spacing) String() string {
	switch s {
	case SpaceNone:
		return "none"
	case SpaceOne:
		return "one"
	case SpaceLine:
		return "line"
	case SpaceLineOut:
		return "line-out"
	case SpaceAutoNone:
		return "auto-none"
	case SpaceAutoOne:
		return "auto-one"
	case SpaceKeep:
		return "keep"
	case SpaceStart:
		return "start"
	default:
		return "spacing?"
	}
}

// Visitor receives the leaves of a file in source order.
type Visitor interface {
	Enter(node string)
	Leave()
	Token(t *Token, sp Spacing)
	Indent()
	Dedent()
	EOF(ws *Whitespace)
}

// NopVisitor implements Visitor with no-ops; embed it to override a subset.
type NopVisitor struct{}

func (NopVisitor) Enter(string)          {}
func (NopVisitor) Leave()                {}
func (NopVisitor) Token(*Token, Spacing) {}
func (NopVisitor) Indent()               {}
func (NopVisitor) Dedent()               {}
func (NopVisitor) EOF(*Whitespace)       {}
