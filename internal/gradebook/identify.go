package gradebook

import "regexp"

var spreadsheetIDPattern = regexp.MustCompile(`/[-\w]{25,}/`)

// IDFromLink extracts the spreadsheet id from a Google Docs link.
func IDFromLink(link string) (string, bool) {
	m := spreadsheetIDPattern.FindString(link)
	if m == "" {
		return "", false
	}
	return m[1 : len(m)-1], true
}

// HasGradeBookSheets reports whether titles contain every required GradeBook sheet.
func HasGradeBookSheets(titles []string) bool {
	present := make(map[string]bool, len(titles))
	for _, t := range titles {
		present[t] = true
	}
	for _, want := range RequiredSheets {
		if !present[want] {
			return false
		}
	}
	return true
}
