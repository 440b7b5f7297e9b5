// Package scripture parses and formats human-written Bible references.
//
// A Reference names a book, a chapter and optionally a verse, a verse range
// within the chapter, a range of whole chapters or a span that crosses
// chapters. Parse accepts free text such as "John 3:16", "Rom 8" or
// "Matthew 5:1-7:29"; Format renders a Reference back to its canonical
// display form. For every valid Reference r, Parse(Format(r)) returns r.
//
// Book names are resolved against a fixed registry of the 66 books of the
// Protestant canon in traditional order, plus a table of common
// abbreviations. All tables are built once at package initialization and
// are safe for concurrent use.
package scripture
