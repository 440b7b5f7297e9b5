package scripture

import (
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// locator is the grammar for everything after the book name:
//
//	3          whole chapter
//	5-7        chapter range
//	3:16       verse
//	3:16-18    verse range
//	5:1-7:29   span across chapters
//
//nolint:govet // participle grammar tags are not standard struct tags
type locator struct {
	Chapter    int         `parser:"@Int"`
	Verses     *verseRange `parser:"( \":\" @@"`
	EndChapter *int        `parser:"| \"-\" @Int )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type verseRange struct {
	Start int        `parser:"@Int"`
	End   *rangeTail `parser:"( \"-\" @@ )?"`
}

// rangeTail holds "-18" (Verse only) or "-7:29" (Chapter then Verse).
//
//nolint:govet // participle grammar tags are not standard struct tags
type rangeTail struct {
	First  int  `parser:"@Int"`
	Second *int `parser:"( \":\" @Int )?"`
}

var (
	locatorLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Int", Pattern: `\d+`},
		{Name: "Punct", Pattern: `[:\-]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	locatorParser = participle.MustBuild[locator](
		participle.Lexer(locatorLexer),
		participle.Elide("Whitespace"),
	)
)

// Parse converts free text such as "John 3:16", "1 cor 13" or
// "Matthew 5:1-7:29" into a Reference. It reports false when the text does
// not name a book followed by a well-formed locator; it never returns a
// partial result.
func Parse(text string) (Reference, bool) {
	book, rest, ok := splitBook(strings.TrimSpace(text))
	if !ok {
		return Reference{}, false
	}
	f, ok := parseLocator(rest)
	if !ok {
		return Reference{}, false
	}
	f.Book = book
	ref, err := New(f)
	if err != nil {
		return Reference{}, false
	}
	return ref, true
}

// ParseList parses a comma or semicolon separated list of references, the
// form produced by FormatMany. Every element must parse.
func ParseList(text string) ([]Reference, bool) {
	parts := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ';' })
	if len(parts) == 0 {
		return nil, false
	}
	refs := make([]Reference, 0, len(parts))
	for _, p := range parts {
		ref, ok := Parse(p)
		if !ok {
			return nil, false
		}
		refs = append(refs, ref)
	}
	return refs, true
}

// splitBook separates the book segment from the locator. Full canonical
// names win, longest first; otherwise the first three, two, then one words
// are offered to Resolve.
func splitBook(s string) (book, rest string, ok bool) {
	for _, name := range longestFirst {
		if len(s) < len(name) || !strings.EqualFold(s[:len(name)], name) {
			continue
		}
		if len(s) > len(name) && !isBookBoundary(s[len(name)]) {
			continue
		}
		return name, strings.TrimSpace(s[len(name):]), true
	}

	words := strings.Fields(s)
	for n := min(3, len(words)); n > 0; n-- {
		if name, found := Resolve(strings.Join(words[:n], " ")); found {
			return name, strings.Join(words[n:], " "), true
		}
	}
	return "", "", false
}

func isBookBoundary(c byte) bool {
	return c == '-' || c == ':' || (c >= '0' && c <= '9') || unicode.IsSpace(rune(c))
}

func parseLocator(s string) (Fields, bool) {
	if s == "" {
		return Fields{}, false
	}
	loc, err := locatorParser.ParseString("", s)
	if err != nil {
		return Fields{}, false
	}

	f := Fields{Chapter: loc.Chapter}
	switch {
	case loc.EndChapter != nil:
		f.EndChapter = loc.EndChapter
	case loc.Verses != nil:
		start := loc.Verses.Start
		f.StartVerse = &start
		if tail := loc.Verses.End; tail != nil {
			first := tail.First
			if tail.Second != nil {
				f.EndChapter = &first
				f.EndVerse = tail.Second
			} else {
				f.EndVerse = &first
			}
		}
	}
	return f, true
}
