package scripture

import (
	"strconv"
	"strings"
)

// Format renders r in canonical display form:
//
//	Matthew 5-7, John 3, Matthew 5:1-7:29, John 3:16-18, John 3:16
func Format(r Reference) string {
	var b strings.Builder
	b.WriteString(r.book)
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(r.chapter))

	switch {
	case r.startVerse == 0 && r.endChapter != 0:
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(r.endChapter))
	case r.startVerse == 0:
	case r.endChapter != 0 && r.endChapter != r.chapter:
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(r.startVerse))
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(r.endChapter))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(r.endVerse))
	case r.endVerse != 0:
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(r.startVerse))
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(r.endVerse))
	default:
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(r.startVerse))
	}
	return b.String()
}

// FormatMany formats each reference and joins them with ", " in the order
// given.
func FormatMany(refs []Reference) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = Format(r)
	}
	return strings.Join(parts, ", ")
}
