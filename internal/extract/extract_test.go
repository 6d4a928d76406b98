package extract

import (
	"reflect"
	"strings"
	"testing"
)

const sampleToken = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789AB"

func TestTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "single token",
			text: "Check " + sampleToken + " now",
			want: []string{sampleToken},
		},
		{
			name: "duplicates collapse",
			text: sampleToken + " and again " + sampleToken,
			want: []string{sampleToken},
		},
		{
			name: "first appearance order",
			text: strings.Repeat("b", 32) + " " + strings.Repeat("a", 40),
			want: []string{strings.Repeat("b", 32), strings.Repeat("a", 40)},
		},
		{
			name: "too short",
			text: strings.Repeat("x", 31),
			want: nil,
		},
		{
			name: "upper bound",
			text: strings.Repeat("y", 44),
			want: []string{strings.Repeat("y", 44)},
		},
		{
			name: "too long is not a partial match",
			text: strings.Repeat("z", 45),
			want: nil,
		},
		{
			name: "underscore breaks boundary",
			text: "_" + strings.Repeat("q", 40),
			want: nil,
		},
		{
			name: "punctuation is a boundary",
			text: "CA:" + sampleToken + ".",
			want: []string{sampleToken},
		},
		{
			name: "glued to accented letter",
			text: "é" + strings.Repeat("A", 40),
			want: nil,
		},
		{
			name: "glued to cyrillic on the right",
			text: strings.Repeat("A", 40) + "д",
			want: nil,
		},
		{
			name: "non-ascii digit is a word character",
			text: "٣" + strings.Repeat("A", 40),
			want: nil,
		},
		{
			name: "emoji is a boundary",
			text: "🚀" + sampleToken + "🚀",
			want: []string{sampleToken},
		},
		{
			name: "glued match skipped, later one kept",
			text: "é" + strings.Repeat("A", 40) + " " + sampleToken,
			want: []string{sampleToken},
		},
		{
			name: "token inside a link",
			text: "https://dexscreener.com/solana/" + sampleToken,
			want: []string{sampleToken},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokens(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokens(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "none",
			text: "nothing to see at https://example.com/x",
			want: nil,
		},
		{
			name: "pump.fun to end of string",
			text: "go https://pump.fun/xyz",
			want: []string{"https://pump.fun/xyz"},
		},
		{
			name: "stops at whitespace",
			text: "https://pump.fun/a\nnext line",
			want: []string{"https://pump.fun/a"},
		},
		{
			name: "prefix group order wins over text order",
			text: "https://dexscreener.com/solana/abc then https://pump.fun/coin",
			want: []string{"https://pump.fun/coin", "https://dexscreener.com/solana/abc"},
		},
		{
			name: "repeats are kept",
			text: "https://pump.fun/x https://pump.fun/x",
			want: []string{"https://pump.fun/x", "https://pump.fun/x"},
		},
		{
			name: "bare prefix",
			text: "https://pump.fun",
			want: []string{"https://pump.fun"},
		},
		{
			name: "dot is literal",
			text: "https://pumpxfun/abc",
			want: nil,
		},
		{
			name: "file separator terminates",
			text: "https://pump.fun/a\x1cb",
			want: []string{"https://pump.fun/a"},
		},
		{
			name: "unit separator terminates",
			text: "https://dexscreener.com/x\x1fy",
			want: []string{"https://dexscreener.com/x"},
		},
		{
			name: "unicode space terminates",
			text: "https://pump.fun/a\u00a0tail",
			want: []string{"https://pump.fun/a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := URLs(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("URLs(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtract_Scenario(t *testing.T) {
	r := Extract("Check " + sampleToken + " https://pump.fun/xyz")

	if !reflect.DeepEqual(r.Tokens, []string{sampleToken}) {
		t.Errorf("Tokens = %v, want [%s]", r.Tokens, sampleToken)
	}
	if !reflect.DeepEqual(r.URLs, []string{"https://pump.fun/xyz"}) {
		t.Errorf("URLs = %v, want [https://pump.fun/xyz]", r.URLs)
	}
	if r.Empty() {
		t.Error("Empty() = true, want false")
	}
	if !Extract("").Empty() {
		t.Error("Extract(\"\").Empty() = false, want true")
	}
}
