package textstats

import (
	"strings"
)

// punctReplacer maps the punctuation characters that split words to spaces.
// The ASCII apostrophe and the typographic right single quote (U+2019) are
// listed separately, they are different characters.
var punctReplacer = strings.NewReplacer(
	".", " ",
	"!", " ",
	"?", " ",
	"'", " ",
	"’", " ",
	"\"", " ",
	",", " ",
)

// Tokenize lowercases text, replaces the sentence punctuation set with
// spaces and splits the result on runs of whitespace. The punctuation set is
// intentionally narrow: hyphens, digits and other symbols stay inside tokens,
// so counts remain comparable across runs of older corpora.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	cleaned := punctReplacer.Replace(strings.ToLower(text))

	return strings.Fields(cleaned)
}
