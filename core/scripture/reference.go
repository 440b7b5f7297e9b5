package scripture

import (
	"encoding/json"
	"strconv"

	"github.com/FocuswithJustin/JuniperJournal/core/errors"
)

// Kind classifies the shape of a Reference.
type Kind int

const (
	KindChapter      Kind = iota // John 3
	KindChapterRange             // Matthew 5-7
	KindVerse                    // John 3:16
	KindVerseRange               // John 3:16-18
	KindSpan                     // Matthew 5:1-7:29
)

func (k Kind) String() string {
	switch k {
	case KindChapter:
		return "chapter"
	case KindChapterRange:
		return "chapter-range"
	case KindVerse:
		return "verse"
	case KindVerseRange:
		return "verse-range"
	case KindSpan:
		return "span"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Reference is a validated, immutable pointer into the canon. The zero
// value is not a valid reference; build one with New or a helper.
//
// Optional fields are stored as 0 when absent, which never collides with a
// real value since every number is at least 1.
type Reference struct {
	book       string
	chapter    int
	startVerse int
	endVerse   int
	endChapter int
}

// Fields is the open, serializable form of a Reference. Nil pointers mean
// the component is absent.
type Fields struct {
	Book       string `json:"book"`
	Chapter    int    `json:"chapter"`
	StartVerse *int   `json:"startVerse,omitempty"`
	EndVerse   *int   `json:"endVerse,omitempty"`
	EndChapter *int   `json:"endChapter,omitempty"`
}

// New validates f and returns the Reference it describes. An end chapter
// equal to the start chapter is dropped, so "John 3:16-3:18" and
// "John 3:16-18" produce the same value.
func New(f Fields) (Reference, error) {
	if !IsBook(f.Book) {
		return Reference{}, &errors.ValidationError{Field: "book", Value: f.Book, Message: "not a canonical book name"}
	}
	if f.Chapter < 1 {
		return Reference{}, positive("chapter", f.Chapter)
	}
	r := Reference{book: f.Book, chapter: f.Chapter}

	for _, opt := range []struct {
		name string
		val  *int
		dst  *int
	}{
		{"startVerse", f.StartVerse, &r.startVerse},
		{"endVerse", f.EndVerse, &r.endVerse},
		{"endChapter", f.EndChapter, &r.endChapter},
	} {
		if opt.val == nil {
			continue
		}
		if *opt.val < 1 {
			return Reference{}, positive(opt.name, *opt.val)
		}
		*opt.dst = *opt.val
	}

	if r.endChapter == r.chapter {
		r.endChapter = 0
	}
	if r.endVerse != 0 && r.startVerse == 0 {
		return Reference{}, errors.NewValidation("endVerse", "requires startVerse")
	}
	if r.endChapter != 0 && r.startVerse != 0 && r.endVerse == 0 {
		return Reference{}, errors.NewValidation("endVerse", "required when a verse range crosses chapters")
	}
	return r, nil
}

func positive(field string, v int) error {
	return &errors.ValidationError{Field: field, Value: strconv.Itoa(v), Message: "must be at least 1"}
}

// MustNew is like New but panics on invalid input. Intended for literals
// in tests and static tables.
func MustNew(f Fields) Reference {
	r, err := New(f)
	if err != nil {
		panic("scripture: " + err.Error())
	}
	return r
}

// Chapter returns a whole-chapter reference.
func Chapter(book string, chapter int) (Reference, error) {
	return New(Fields{Book: book, Chapter: chapter})
}

// ChapterRange returns a range of whole chapters.
func ChapterRange(book string, chapter, endChapter int) (Reference, error) {
	return New(Fields{Book: book, Chapter: chapter, EndChapter: &endChapter})
}

// Verse returns a single-verse reference.
func Verse(book string, chapter, verse int) (Reference, error) {
	return New(Fields{Book: book, Chapter: chapter, StartVerse: &verse})
}

// VerseRange returns a verse range within one chapter.
func VerseRange(book string, chapter, startVerse, endVerse int) (Reference, error) {
	return New(Fields{Book: book, Chapter: chapter, StartVerse: &startVerse, EndVerse: &endVerse})
}

// Span returns a verse range that ends in a later chapter.
func Span(book string, chapter, startVerse, endChapter, endVerse int) (Reference, error) {
	return New(Fields{
		Book:       book,
		Chapter:    chapter,
		StartVerse: &startVerse,
		EndChapter: &endChapter,
		EndVerse:   &endVerse,
	})
}

func (r Reference) Book() string { return r.book }

func (r Reference) Chapter() int { return r.chapter }

func (r Reference) StartVerse() (int, bool) { return r.startVerse, r.startVerse != 0 }

func (r Reference) EndVerse() (int, bool) { return r.endVerse, r.endVerse != 0 }

func (r Reference) EndChapter() (int, bool) { return r.endChapter, r.endChapter != 0 }

// IsZero reports whether r is the zero value.
func (r Reference) IsZero() bool { return r.book == "" }

// Kind reports the shape of r.
func (r Reference) Kind() Kind {
	switch {
	case r.startVerse == 0 && r.endChapter != 0:
		return KindChapterRange
	case r.startVerse == 0:
		return KindChapter
	case r.endChapter != 0:
		return KindSpan
	case r.endVerse != 0:
		return KindVerseRange
	default:
		return KindVerse
	}
}

// Fields returns the open form of r.
func (r Reference) Fields() Fields {
	f := Fields{Book: r.book, Chapter: r.chapter}
	if v, ok := r.StartVerse(); ok {
		f.StartVerse = &v
	}
	if v, ok := r.EndVerse(); ok {
		f.EndVerse = &v
	}
	if v, ok := r.EndChapter(); ok {
		f.EndChapter = &v
	}
	return f
}

// LastChapter returns the final chapter r touches.
func (r Reference) LastChapter() int {
	if r.endChapter != 0 {
		return r.endChapter
	}
	return r.chapter
}

// String renders r in canonical display form.
func (r Reference) String() string { return Format(r) }

func (r Reference) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields())
}

// UnmarshalJSON decodes the field-for-field form and validates it.
func (r *Reference) UnmarshalJSON(data []byte) error {
	var f Fields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	ref, err := New(f)
	if err != nil {
		return err
	}
	*r = ref
	return nil
}
