package chromedp_portal

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	linkSelector    = "a"
	hitareaSelector = ".hitarea"
	selectSelector  = "select"
	buttonSelector  = "input, button"
)

// linkIndex returns the position, among all links of doc, of the first link
// matching one of keywords, or -1. In exact mode a link whose trimmed text
// equals a keyword wins, then one whose inner HTML contains it; otherwise a
// case-insensitive substring of the text is enough.
func linkIndex(doc *goquery.Document, keywords []string, exact bool) int {
	links := doc.Find(linkSelector)
	if exact {
		if i := firstLink(links, func(a *goquery.Selection, k string) bool {
			return strings.TrimSpace(a.Text()) == k
		}, keywords); i >= 0 {
			return i
		}
		return firstLink(links, func(a *goquery.Selection, k string) bool {
			inner, _ := a.Html()
			return strings.Contains(inner, k)
		}, keywords)
	}
	return firstLink(links, func(a *goquery.Selection, k string) bool {
		return strings.Contains(strings.ToLower(a.Text()), strings.ToLower(k))
	}, keywords)
}

func firstLink(links *goquery.Selection, match func(*goquery.Selection, string) bool, keywords []string) int {
	found := -1
	links.EachWithBreak(func(i int, a *goquery.Selection) bool {
		for _, k := range keywords {
			if match(a, k) {
				found = i
				return false
			}
		}
		return true
	})
	return found
}

// hitareaIndex returns the position, among all tree hitareas of doc, of the
// first collapsed node whose parent mentions one of keywords, or -1.
func hitareaIndex(doc *goquery.Document, keywords []string) int {
	found := -1
	doc.Find(hitareaSelector).EachWithBreak(func(i int, h *goquery.Selection) bool {
		if !h.HasClass("expandable-hitarea") {
			return true
		}
		text := strings.ToLower(h.Parent().Text())
		for _, k := range keywords {
			if strings.Contains(text, strings.ToLower(k)) {
				found = i
				return false
			}
		}
		return true
	})
	return found
}

// termForm locates the year/semester form controls by position within their
// selector's matches.
type termForm struct {
	year, semester         int // index among selectSelector
	yearOptions, semOptions int
	submit                 int // index among buttonSelector
}

// findTermForm looks for the year and semester dropdowns and the plain
// submit button next to them, skipping PDF/download buttons.
func findTermForm(doc *goquery.Document) (termForm, bool) {
	form := termForm{year: -1, semester: -1, submit: -1}

	doc.Find(selectSelector).Each(func(i int, s *goquery.Selection) {
		name := controlName(s)
		options := s.Find("option").Length()
		switch {
		case form.year < 0 && (strings.Contains(name, "year") || strings.Contains(name, "yr")):
			form.year, form.yearOptions = i, options
		case form.semester < 0 && strings.Contains(name, "sem"):
			form.semester, form.semOptions = i, options
		}
	})
	if form.year < 0 || form.semester < 0 {
		return form, false
	}

	doc.Find(buttonSelector).EachWithBreak(func(i int, b *goquery.Selection) bool {
		typ := strings.ToLower(b.AttrOr("type", ""))
		name := strings.ToLower(b.AttrOr("name", ""))
		value := strings.ToLower(b.AttrOr("value", ""))
		if value == "" {
			value = strings.ToLower(strings.TrimSpace(b.Text()))
		}
		if strings.Contains(value, "pdf") || strings.Contains(value, "download") || strings.Contains(name, "mpdfx") {
			return true
		}
		if (typ == "submit" && name == "submit") || value == "submit" {
			form.submit = i
			return false
		}
		return true
	})
	return form, form.submit >= 0
}

func controlName(s *goquery.Selection) string {
	name := s.AttrOr("name", "")
	if name == "" {
		name = s.AttrOr("id", "")
	}
	return strings.ToLower(name)
}

// loginFormPresent reports whether doc still shows the login form.
func loginFormPresent(doc *goquery.Document) bool {
	return doc.Find("#uid").Length() > 0 && doc.Find("#pwd").Length() > 0
}
