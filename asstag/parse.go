package asstag

import (
	"strings"

	"github.com/npillmayer/assgo/assissue"
)

// Span is re-exported from assissue for convenience.
type Span = assissue.Span

// TagInstance is one `\name(args)` item found inside a `{…}` override
// block (spec.md §3).
type TagInstance struct {
	Name     string
	NameSpan Span
	Args     Args
	ArgsSpan Span
	Pos      int // byte offset of the leading '\' within the enclosing event text
	Handler  Handler
}

// TokenKind distinguishes the two kinds of Token produced by Tokenize.
type TokenKind int

const (
	TokenLiteral TokenKind = iota
	TokenBlock
)

// Token is one piece of dialogue text: either a literal run (escapes not
// yet expanded) or a `{…}` override block already split into TagInstances.
type Token struct {
	Kind    TokenKind
	Span    Span   // for TokenBlock, spans the whole "{...}" including braces
	Literal string // set iff Kind == TokenLiteral; borrowed from text
	Tags    []TagInstance
}

// Tokenize splits event dialogue text into literal runs and override
// blocks, registering a diagnostic for any unterminated block (spec.md
// §4.2) and resolving each tag against reg.
//
// Tokenize is single-pass and O(n); it allocates only the result slice and
// the per-block TagInstance slices, per spec.md §4.2's performance clause.
func Tokenize(text string, reg *Registry) ([]Token, *assissue.Collector) {
	col := &assissue.Collector{}
	var tokens []Token
	i := 0
	litStart := 0
	for i < len(text) {
		if text[i] != '{' {
			i++
			continue
		}
		if i > litStart {
			tokens = append(tokens, Token{Kind: TokenLiteral, Span: Span{Start: litStart, End: i}, Literal: text[litStart:i]})
		}
		blockStart := i
		depth := 0
		for i < len(text) {
			switch text[i] {
			case '{':
				depth++
			case '}':
				depth--
			}
			i++
			if depth == 0 {
				break
			}
		}
		unterminated := depth != 0
		blockEnd := i
		interiorStart := blockStart + 1
		interiorEnd := blockEnd
		if !unterminated {
			interiorEnd = blockEnd - 1
		}
		if unterminated {
			col.Add(assissue.CodeMalformedHeader, assissue.Warning, Span{Start: blockStart, End: len(text)},
				"unterminated override block, extending to end of text")
		}
		tags := parseTagsInBlock(text, interiorStart, interiorEnd, reg, col)
		tokens = append(tokens, Token{Kind: TokenBlock, Span: Span{Start: blockStart, End: blockEnd}, Tags: tags})
		litStart = i
	}
	if litStart < len(text) {
		tokens = append(tokens, Token{Kind: TokenLiteral, Span: Span{Start: litStart, End: len(text)}, Literal: text[litStart:]})
	}
	return tokens, col
}

// parseTagsInBlock implements spec.md §4.2's 4-step block parser over the
// interior of one `{…}` block.
func parseTagsInBlock(text string, start, end int, reg *Registry, col *assissue.Collector) []TagInstance {
	var tags []TagInstance
	i := start
	for i < end {
		// 1. Skip until '\'.
		for i < end && text[i] != '\\' {
			i++
		}
		if i >= end {
			break
		}
		tagStart := i
		i++ // consume '\'
		nameStart := i
		// Tag names may carry one leading digit (1c, 2a, 3c, 4a, ...).
		if i < end && text[i] >= '0' && text[i] <= '9' {
			i++
		}
		for i < end && isAsciiAlpha(text[i]) {
			i++
		}
		name := text[nameStart:i]
		nameSpan := Span{Start: nameStart, End: i}
		if name == "" {
			// Lone backslash with no following letters: skip it and keep scanning.
			col.Add(assissue.CodeMalformedHeader, assissue.Info, Span{Start: tagStart, End: i}, "stray '\\' with no tag name")
			continue
		}
		argsStart := i
		depth := 0
		for i < end {
			c := text[i]
			if c == '(' {
				depth++
			} else if c == ')' {
				if depth > 0 {
					depth--
				}
			} else if c == '\\' && depth == 0 {
				break
			}
			i++
		}
		argsRaw := text[argsStart:i]
		argsSpan := Span{Start: argsStart, End: i}
		var handler Handler
		if reg != nil {
			handler, _ = reg.Lookup(name)
		}
		tags = append(tags, TagInstance{
			Name: name, NameSpan: nameSpan,
			Args: splitArgs(argsRaw), ArgsSpan: argsSpan,
			Pos: tagStart, Handler: handler,
		})
	}
	return tags
}

func isAsciiAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// splitArgs parses a tag's raw argument text into Args: strips one layer of
// surrounding parens if present, then splits on top-level commas (commas
// nested inside a further paren level are kept with their enclosing part).
func splitArgs(raw string) Args {
	body := strings.TrimSpace(raw)
	if strings.HasPrefix(body, "(") && strings.HasSuffix(body, ")") {
		body = body[1 : len(body)-1]
	}
	if body == "" {
		return Args{Raw: raw}
	}
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(body[last:i]))
				last = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(body[last:]))
	return Args{Raw: raw, Parts: parts}
}

// PlainText returns text with every override block removed and the three
// recognized escapes expanded: \N and \n become a newline, \h becomes a
// non-breaking space (U+00A0). Unknown `\x` escapes outside a block are
// preserved literally. PlainText is a pure function of text (spec.md §4.2,
// §8 property 5): it never consults the tag registry.
func PlainText(text string) string {
	tokens, _ := Tokenize(text, nil)
	var b strings.Builder
	for _, tok := range tokens {
		if tok.Kind != TokenLiteral {
			continue
		}
		expandEscapes(&b, tok.Literal)
	}
	return b.String()
}

func expandEscapes(b *strings.Builder, s string) {
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'N', 'n':
				b.WriteByte('\n')
				i += 2
				continue
			case 'h':
				b.WriteRune(' ')
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
}
