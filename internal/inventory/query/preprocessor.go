// Package query turns raw user text into a product search term and a
// command intent.
package query

import (
	"sort"
	"strings"

	"inventory-workers/internal/inventory/textnorm"
)

// Source describes how the query text was captured.
type Source string

const (
	SourceTyped Source = "typed"
	SourceVoice Source = "voice"
	SourceOCR   Source = "ocr"
)

// ParseSource defaults unknown or empty values to typed.
func ParseSource(s string) Source {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceVoice:
		return SourceVoice
	case SourceOCR:
		return SourceOCR
	default:
		return SourceTyped
	}
}

// Informal reports whether the text came through a lossy channel.
func (s Source) Informal() bool {
	return s == SourceVoice || s == SourceOCR
}

const punctuation = "¿?¡!.,;:\"'()[]{}«»"

// DefaultFillerPhrases are the Spanish and English fragments that surround a
// product name in a price question.
func DefaultFillerPhrases() []string {
	return []string{
		"cuanto cuesta", "cuanto cuestan", "cuanto vale", "cuanto valen", "cuanto sale",
		"que precio tiene", "a como esta", "a cuanto esta",
		"dame el precio de", "dame el precio del", "me das el precio de", "me puedes dar el precio de",
		"el precio de", "el precio del", "precio del", "precio de", "precio",
		"reporte de", "estado de", "informe de", "tienes", "tienen", "hay", "por favor", "quiero",
		"how much does it cost", "how much is", "how much does", "how much are",
		"give me the price of", "what is the price of", "price of", "the price of",
		"report on", "status of", "do you have", "please",
		"el", "la", "los", "las", "del", "un", "una", "the",
	}
}

type Preprocessor struct {
	phrases []string
}

// NewPreprocessor folds the phrases and orders them longest first so that a
// longer phrase is removed before any phrase it contains.
func NewPreprocessor(phrases []string) *Preprocessor {
	if phrases == nil {
		phrases = DefaultFillerPhrases()
	}
	seen := make(map[string]bool)
	var folded []string
	for _, p := range phrases {
		f := collapse(stripPunctuation(textnorm.Fold(p)))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		folded = append(folded, f)
	}
	sort.SliceStable(folded, func(i, j int) bool {
		wi, wj := strings.Count(folded[i], " "), strings.Count(folded[j], " ")
		if wi != wj {
			return wi > wj
		}
		return len(folded[i]) > len(folded[j])
	})
	return &Preprocessor{phrases: folded}
}

// Clean returns the search term left after removing filler phrases. It may be empty.
func (p *Preprocessor) Clean(q string) string {
	text := " " + collapse(stripPunctuation(textnorm.Fold(q))) + " "
	for _, phrase := range p.phrases {
		needle := " " + phrase + " "
		for strings.Contains(text, needle) {
			text = strings.ReplaceAll(text, needle, " ")
		}
	}
	return collapse(text)
}

// Phrases returns the active filler list in removal order.
func (p *Preprocessor) Phrases() []string {
	return append([]string(nil), p.phrases...)
}

// stripPunctuation blanks punctuation but keeps decimal marks inside numbers ("0,5mg").
func stripPunctuation(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range rs {
		if !strings.ContainsRune(punctuation, r) {
			b.WriteRune(r)
			continue
		}
		if (r == '.' || r == ',') && i > 0 && i < len(rs)-1 && isDigit(rs[i-1]) && isDigit(rs[i+1]) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(' ')
	}
	return b.String()
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
