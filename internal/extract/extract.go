// Package extract pulls contract-address candidates and promotional links out of
// chat message text.
//
// Tokens are 32-44 character alphanumeric runs bounded by word boundaries, the
// shape of a base58 Solana mint or a hex EVM address without its 0x prefix.
// Links are full URLs on a fixed set of hosts, captured up to the next whitespace.
package extract

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// TokenPattern matches a single contract-address candidate. RE2 word
// boundaries are ASCII-only, so Tokens also rejects matches that touch a
// non-ASCII letter or digit.
const TokenPattern = `\b[a-zA-Z0-9]{32,44}\b`

// LinkPrefixes are the URL prefixes captured from messages, in output order.
var LinkPrefixes = []string{
	"https://pump.fun",
	"https://dexscreener.com",
}

// notSpace is a URL tail: anything up to ASCII or Unicode whitespace,
// including the \x1c-\x1f separators.
const notSpace = `[^\s\v\x1c-\x1f\x{85}\p{Z}]*`

var (
	tokenRegex = regexp.MustCompile(TokenPattern)
	linkRegex  = compileLinkPatterns(LinkPrefixes)
)

func compileLinkPatterns(prefixes []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(prefixes))
	for _, p := range prefixes {
		out = append(out, regexp.MustCompile(regexp.QuoteMeta(p)+notSpace))
	}
	return out
}

// Result holds what Extract found in one message.
type Result struct {
	Tokens []string // unique, in order of first appearance
	URLs   []string // prefix-group order, then order of appearance; may repeat
}

// Empty reports whether nothing was found.
func (r Result) Empty() bool {
	return len(r.Tokens) == 0 && len(r.URLs) == 0
}

// Extract scans text for tokens and links. It never fails.
func Extract(text string) Result {
	return Result{
		Tokens: Tokens(text),
		URLs:   URLs(text),
	}
}

// Tokens returns the distinct contract-address candidates in text.
func Tokens(text string) []string {
	matches := tokenRegex.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var tokens []string
	for _, loc := range matches {
		if !unicodeBounded(text, loc[0], loc[1]) {
			continue
		}
		m := text[loc[0]:loc[1]]
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		tokens = append(tokens, m)
	}
	return tokens
}

// unicodeBounded reports whether text[start:end] is not glued to a Unicode
// word character on either side.
func unicodeBounded(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// URLs returns every link in text that starts with one of LinkPrefixes.
func URLs(text string) []string {
	var urls []string
	for _, re := range linkRegex {
		urls = append(urls, re.FindAllString(text, -1)...)
	}
	return urls
}
