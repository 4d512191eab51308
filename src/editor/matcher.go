package editor

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// TokenKind classifies decoder events.
type TokenKind uint8

const (
	// TokenStart is a start tag; Name holds the local name.
	TokenStart TokenKind = iota + 1
	// TokenEnd is an end tag.
	TokenEnd
	// TokenCharData is text or a CDATA section; Text holds it decoded.
	TokenCharData
	// TokenComment is a comment.
	TokenComment
	// TokenProcInst is a processing instruction; Name holds the target.
	TokenProcInst
	// TokenDirective is a <!...> declaration.
	TokenDirective
)

// String returns a short name for the kind.
func (k TokenKind) String() string {
	switch k {
	case TokenStart:
		return "start"
	case TokenEnd:
		return "end"
	case TokenCharData:
		return "chardata"
	case TokenComment:
		return "comment"
	case TokenProcInst:
		return "procinst"
	case TokenDirective:
		return "directive"
	default:
		return "none"
	}
}

// Token is one decoder event together with the buffer span it was read from.
// Seq is the ordinal of the event in the walk and identifies it.
type Token struct {
	Seq   int
	Kind  TokenKind
	Name  string
	Text  string
	Start Position
	End   Position
}

// Match is a non-tag token found under a queried path, with the token that preceded it.
// Owner is the Seq of the start tag of the element that directly contains Cur.
type Match struct {
	Path  string
	Owner int
	Prev  Token
	Cur   Token
}

type matchMode uint8

const (
	modeExact matchMode = iota
	modePrefix
)

// visitFunc receives every token with the element path it appeared under and the Seq of
// the start tag owning that path (0 outside the root).
type visitFunc func(path string, owner int, prev, cur Token)

// walk decodes the whole buffer once, tracking the element path.
func walk(lines *Lines, visit visitFunc) error {
	decoder := xml.NewDecoder(newLineReader(lines))
	var (
		stack  []string
		owners []int
		prev   Token
		start Position
	)
	for seq := 1; ; seq++ {
		raw, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrParse, err)
		}
		line, col := decoder.InputPos()
		end := Position{Line: line - 1, Column: col - 1}
		tok := Token{Seq: seq, Start: start, End: end}
		path := joinPath(stack)
		switch t := raw.(type) {
		case xml.StartElement:
			tok.Kind = TokenStart
			tok.Name = t.Name.Local
			stack = append(stack, t.Name.Local)
			owners = append(owners, seq)
			path = joinPath(stack)
		case xml.EndElement:
			tok.Kind = TokenEnd
			tok.Name = t.Name.Local
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
				owners = owners[:len(owners)-1]
			}
		case xml.CharData:
			tok.Kind = TokenCharData
			tok.Text = string(t)
		case xml.Comment:
			tok.Kind = TokenComment
			tok.Text = string(t)
		case xml.ProcInst:
			tok.Kind = TokenProcInst
			tok.Name = t.Target
			tok.Text = string(t.Inst)
		case xml.Directive:
			tok.Kind = TokenDirective
			tok.Text = string(t)
		}
		owner := 0
		if len(owners) > 0 {
			owner = owners[len(owners)-1]
		}
		visit(path, owner, prev, tok)
		prev = tok
		start = end
	}
}

// match collects the non-tag tokens under query in document order. A parse error
// discards everything collected so far.
func match(lines *Lines, query string, mode matchMode) ([]Match, error) {
	query = NormalizePath(query)
	var result []Match
	lastSeq := -1
	err := walk(lines, func(path string, owner int, prev, cur Token) {
		if cur.Kind == TokenStart || cur.Kind == TokenEnd {
			return
		}
		if path != query && (mode != modePrefix || !underPath(path, query)) {
			return
		}
		// the decoder may split one text node into back-to-back character data events
		if cur.Kind == TokenCharData && prev.Kind == TokenCharData && lastSeq == prev.Seq {
			return
		}
		result = append(result, Match{Path: path, Owner: owner, Prev: prev, Cur: cur})
		if cur.Kind == TokenCharData {
			lastSeq = cur.Seq
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
