package reading

import "github.com/FocuswithJustin/JuniperJournal/core/scripture"

// BookCoverage reports how many distinct chapters of a book were read.
type BookCoverage struct {
	Book         string              `json:"book"`
	Testament    scripture.Testament `json:"testament"`
	ChaptersRead int                 `json:"chapters_read"`
	Chapters     int                 `json:"chapters"`
}

// Coverage is the whole-canon view of chapters read.
type Coverage struct {
	Books        []BookCoverage `json:"books"`
	ChaptersRead int            `json:"chapters_read"`
	Chapters     int            `json:"chapters"`
}

// Percent returns the share of the canon read, 0-100.
func (c Coverage) Percent() float64 {
	if c.Chapters == 0 {
		return 0
	}
	return float64(c.ChaptersRead) * 100 / float64(c.Chapters)
}

// ComputeCoverage counts the distinct chapters touched by the readings.
// Chapters beyond a book's chapter count (e.g. "Jude 5", meaning verse 5)
// are ignored. Books with nothing read are omitted from Books.
func ComputeCoverage(readings []Reading) Coverage {
	read := make(map[string]map[int]bool)
	for _, r := range readings {
		for _, ref := range r.Scripture {
			book, ok := scripture.Lookup(ref.Book())
			if !ok {
				continue
			}
			lo, hi := ref.Chapter(), ref.LastChapter()
			if lo > hi {
				lo, hi = hi, lo
			}
			for ch := lo; ch <= hi && ch <= book.Chapters; ch++ {
				if read[book.Name] == nil {
					read[book.Name] = make(map[int]bool)
				}
				read[book.Name][ch] = true
			}
		}
	}

	var c Coverage
	for _, b := range scripture.Catalog() {
		c.Chapters += b.Chapters
		n := len(read[b.Name])
		if n == 0 {
			continue
		}
		c.ChaptersRead += n
		c.Books = append(c.Books, BookCoverage{
			Book:         b.Name,
			Testament:    b.Testament,
			ChaptersRead: n,
			Chapters:     b.Chapters,
		})
	}
	return c
}
