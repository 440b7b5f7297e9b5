package scripture

import (
	"sort"
	"strings"
)

// Testament identifies which half of the canon a book belongs to.
type Testament string

const (
	OldTestament Testament = "OT"
	NewTestament Testament = "NT"
)

// Book describes one entry in the registry.
type Book struct {
	Name      string    `json:"name"`
	Testament Testament `json:"testament"`
	Order     int       `json:"order"`
	Chapters  int       `json:"chapters"`
}

// catalog is the canon in traditional order with KJV chapter counts.
var catalog = []Book{
	{Name: "Genesis", Chapters: 50},
	{Name: "Exodus", Chapters: 40},
	{Name: "Leviticus", Chapters: 27},
	{Name: "Numbers", Chapters: 36},
	{Name: "Deuteronomy", Chapters: 34},
	{Name: "Joshua", Chapters: 24},
	{Name: "Judges", Chapters: 21},
	{Name: "Ruth", Chapters: 4},
	{Name: "1 Samuel", Chapters: 31},
	{Name: "2 Samuel", Chapters: 24},
	{Name: "1 Kings", Chapters: 22},
	{Name: "2 Kings", Chapters: 25},
	{Name: "1 Chronicles", Chapters: 29},
	{Name: "2 Chronicles", Chapters: 36},
	{Name: "Ezra", Chapters: 10},
	{Name: "Nehemiah", Chapters: 13},
	{Name: "Esther", Chapters: 10},
	{Name: "Job", Chapters: 42},
	{Name: "Psalms", Chapters: 150},
	{Name: "Proverbs", Chapters: 31},
	{Name: "Ecclesiastes", Chapters: 12},
	{Name: "Song of Solomon", Chapters: 8},
	{Name: "Isaiah", Chapters: 66},
	{Name: "Jeremiah", Chapters: 52},
	{Name: "Lamentations", Chapters: 5},
	{Name: "Ezekiel", Chapters: 48},
	{Name: "Daniel", Chapters: 12},
	{Name: "Hosea", Chapters: 14},
	{Name: "Joel", Chapters: 3},
	{Name: "Amos", Chapters: 9},
	{Name: "Obadiah", Chapters: 1},
	{Name: "Jonah", Chapters: 4},
	{Name: "Micah", Chapters: 7},
	{Name: "Nahum", Chapters: 3},
	{Name: "Habakkuk", Chapters: 3},
	{Name: "Zephaniah", Chapters: 3},
	{Name: "Haggai", Chapters: 2},
	{Name: "Zechariah", Chapters: 14},
	{Name: "Malachi", Chapters: 4},
	{Name: "Matthew", Chapters: 28},
	{Name: "Mark", Chapters: 16},
	{Name: "Luke", Chapters: 24},
	{Name: "John", Chapters: 21},
	{Name: "Acts", Chapters: 28},
	{Name: "Romans", Chapters: 16},
	{Name: "1 Corinthians", Chapters: 16},
	{Name: "2 Corinthians", Chapters: 13},
	{Name: "Galatians", Chapters: 6},
	{Name: "Ephesians", Chapters: 6},
	{Name: "Philippians", Chapters: 4},
	{Name: "Colossians", Chapters: 4},
	{Name: "1 Thessalonians", Chapters: 5},
	{Name: "2 Thessalonians", Chapters: 3},
	{Name: "1 Timothy", Chapters: 6},
	{Name: "2 Timothy", Chapters: 4},
	{Name: "Titus", Chapters: 3},
	{Name: "Philemon", Chapters: 1},
	{Name: "Hebrews", Chapters: 13},
	{Name: "James", Chapters: 5},
	{Name: "1 Peter", Chapters: 5},
	{Name: "2 Peter", Chapters: 3},
	{Name: "1 John", Chapters: 5},
	{Name: "2 John", Chapters: 1},
	{Name: "3 John", Chapters: 1},
	{Name: "Jude", Chapters: 1},
	{Name: "Revelation", Chapters: 22},
}

// firstNewTestamentBook is the catalog index of Matthew.
const firstNewTestamentBook = 39

// abbreviations maps lower-cased abbreviations to canonical book names.
var abbreviations = map[string]string{
	"gen": "Genesis", "ge.": "Genesis",
	"exo": "Exodus", "ex.": "Exodus",
	"lev": "Leviticus", "le.": "Leviticus",
	"num": "Numbers", "nu.": "Numbers",
	"deu": "Deuteronomy", "de.": "Deuteronomy", "deut": "Deuteronomy",
	"jos": "Joshua", "josh": "Joshua",
	"jdg": "Judges", "judg": "Judges",
	"rut": "Ruth", "ru.": "Ruth",
	"1sa": "1 Samuel", "1sam": "1 Samuel", "1 sam": "1 Samuel",
	"2sa": "2 Samuel", "2sam": "2 Samuel", "2 sam": "2 Samuel",
	"1ki": "1 Kings", "1kgs": "1 Kings", "1 kings": "1 Kings",
	"2ki": "2 Kings", "2kgs": "2 Kings", "2 kings": "2 Kings",
	"1ch": "1 Chronicles", "1chr": "1 Chronicles", "1 chr": "1 Chronicles",
	"2ch": "2 Chronicles", "2chr": "2 Chronicles", "2 chr": "2 Chronicles",
	"ezr": "Ezra",
	"neh": "Nehemiah", "ne.": "Nehemiah",
	"est": "Esther", "es.": "Esther",
	"psa": "Psalms", "ps": "Psalms", "psalm": "Psalms",
	"pro": "Proverbs", "prov": "Proverbs", "pr.": "Proverbs",
	"ecc": "Ecclesiastes", "eccl": "Ecclesiastes", "ec.": "Ecclesiastes",
	"son": "Song of Solomon", "ss.": "Song of Solomon", "sos": "Song of Solomon", "song of songs": "Song of Solomon",
	"isa": "Isaiah", "is.": "Isaiah",
	"jer": "Jeremiah", "je.": "Jeremiah",
	"lam": "Lamentations", "la.": "Lamentations",
	"eze": "Ezekiel", "ezek": "Ezekiel", "ez.": "Ezekiel",
	"dan": "Daniel", "da.": "Daniel",
	"hos": "Hosea", "ho.": "Hosea",
	"joe": "Joel", "jl.": "Joel",
	"amo": "Amos", "am.": "Amos",
	"oba": "Obadiah", "ob.": "Obadiah",
	"jon": "Jonah", "jnh.": "Jonah",
	"mic": "Micah", "mi.": "Micah",
	"nah": "Nahum", "na.": "Nahum",
	"hab": "Habakkuk", "hb.": "Habakkuk",
	"zep": "Zephaniah", "zeph": "Zephaniah", "zp.": "Zephaniah",
	"hag": "Haggai", "hg.": "Haggai",
	"zec": "Zechariah", "zech": "Zechariah", "zc.": "Zechariah",
	"mal": "Malachi", "ml.": "Malachi",

	"mat": "Matthew", "matt": "Matthew", "mt.": "Matthew",
	"mar": "Mark", "mrk": "Mark", "mk.": "Mark",
	"luk": "Luke", "lu.": "Luke",
	"joh": "John", "jn.": "John",
	"act": "Acts", "ac.": "Acts",
	"rom": "Romans", "ro.": "Romans",
	"1co": "1 Corinthians", "1cor": "1 Corinthians", "1 cor": "1 Corinthians",
	"2co": "2 Corinthians", "2cor": "2 Corinthians", "2 cor": "2 Corinthians",
	"gal": "Galatians", "ga.": "Galatians",
	"eph": "Ephesians", "ep.": "Ephesians",
	"phi": "Philippians", "phil": "Philippians", "ph.": "Philippians",
	"col": "Colossians", "co.": "Colossians",
	"1th": "1 Thessalonians", "1thess": "1 Thessalonians", "1 thess": "1 Thessalonians",
	"2th": "2 Thessalonians", "2thess": "2 Thessalonians", "2 thess": "2 Thessalonians",
	"1ti": "1 Timothy", "1tim": "1 Timothy", "1 tim": "1 Timothy",
	"2ti": "2 Timothy", "2tim": "2 Timothy", "2 tim": "2 Timothy",
	"tit": "Titus", "ti.": "Titus",
	"phm": "Philemon", "pm.": "Philemon",
	"heb": "Hebrews", "he.": "Hebrews",
	"jas": "James", "jam": "James", "jm.": "James",
	"1pe": "1 Peter", "1pet": "1 Peter", "1 pet": "1 Peter",
	"2pe": "2 Peter", "2pet": "2 Peter", "2 pet": "2 Peter",
	"1jo": "1 John", "1jn": "1 John", "1 john": "1 John",
	"2jo": "2 John", "2jn": "2 John", "2 john": "2 John",
	"3jo": "3 John", "3jn": "3 John", "3 john": "3 John",
	"jud": "Jude", "jd.": "Jude",
	"rev": "Revelation", "re.": "Revelation",
}

var (
	byName       map[string]int
	lowerNames   []string
	longestFirst []string
)

func init() {
	byName = make(map[string]int, len(catalog))
	lowerNames = make([]string, len(catalog))
	longestFirst = make([]string, len(catalog))
	for i := range catalog {
		catalog[i].Order = i + 1
		if i < firstNewTestamentBook {
			catalog[i].Testament = OldTestament
		} else {
			catalog[i].Testament = NewTestament
		}
		byName[catalog[i].Name] = i
		lowerNames[i] = strings.ToLower(catalog[i].Name)
		longestFirst[i] = catalog[i].Name
	}
	sort.SliceStable(longestFirst, func(a, b int) bool {
		return len(longestFirst[a]) > len(longestFirst[b])
	})
}

// Books returns the canonical book names in registry order.
func Books() []string {
	names := make([]string, len(catalog))
	for i, b := range catalog {
		names[i] = b.Name
	}
	return names
}

// Catalog returns the registry with per-book metadata.
func Catalog() []Book {
	out := make([]Book, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the registry entry for an exact canonical name.
func Lookup(name string) (Book, bool) {
	i, ok := byName[name]
	if !ok {
		return Book{}, false
	}
	return catalog[i], true
}

// IsBook reports whether name is a canonical book name (case-sensitive).
func IsBook(name string) bool {
	_, ok := byName[name]
	return ok
}

// Abbreviation returns the canonical book for a lower-cased abbreviation.
func Abbreviation(key string) (string, bool) {
	name, ok := abbreviations[key]
	return name, ok
}

// Abbreviations returns a copy of the abbreviation table.
func Abbreviations() map[string]string {
	out := make(map[string]string, len(abbreviations))
	for k, v := range abbreviations {
		out[k] = v
	}
	return out
}
