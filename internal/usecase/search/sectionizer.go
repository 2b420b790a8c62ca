package search

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
)

// MinSectionLength is the shortest section text kept, in bytes.
const MinSectionLength = 100

// FullDocumentTag tags the whole-body section every filing gets.
const FullDocumentTag = "full_document"

var (
	periodicItemRe = regexp.MustCompile(`(?im)^[ \t]*item[ \t]+(\d{1,2}[a-c]?)\.?[ \t]*[-:.]?[ \t]*([^\n]{0,120})$`)
	currentItemRe  = regexp.MustCompile(`(?im)^[ \t]*item[ \t]+(\d\.\d{2})\.?[ \t]*[-:.]?[ \t]*([^\n]{0,120})$`)
	proxyHeadingRe = regexp.MustCompile(`(?im)^[ \t]*((?:compensation discussion and analysis|executive compensation|summary compensation table|election of directors|corporate governance|board of directors|director compensation|security ownership[^\n]{0,60}|audit committee report|proposal(?:[ \t]+no\.?)?[ \t]+\d+[^\n]{0,80}))[ \t]*$`)
	slugRe         = regexp.MustCompile(`[^a-z0-9]+`)
)

// Sectionize splits a filing body into coarse sections by form type: a whole-body section
// for every form plus heading-delimited sub-sections for narrative-heavy forms. Sections
// shorter than MinSectionLength are dropped.
func Sectionize(form, content string) []filing.Section {
	var out []filing.Section
	if len(strings.TrimSpace(content)) >= MinSectionLength {
		out = append(out, filing.Section{Tag: FullDocumentTag, Title: "Full Document", Text: content})
	}

	var re *regexp.Regexp
	switch strings.TrimSuffix(strings.ToUpper(form), "/A") {
	case filing.Form10K, filing.Form10Q, filing.Form20F, filing.Form40F:
		re = periodicItemRe
	case filing.Form8K, "6-K":
		re = currentItemRe
	case filing.FormDEF14A:
		re = proxyHeadingRe
	default:
		return out
	}

	locs := re.FindAllStringSubmatchIndex(content, -1)
	seen := make(map[string]int)
	for i, loc := range locs {
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		text := strings.TrimSpace(content[loc[1]:end])
		if len(text) < MinSectionLength {
			continue
		}
		tag, title := headingTag(re, content, loc)
		if n := seen[tag]; n > 0 {
			// Tables of contents repeat headings; keep later ones distinct.
			seen[tag] = n + 1
			tag = tag + "_" + strconv.Itoa(n+1)
		} else {
			seen[tag] = 1
		}
		out = append(out, filing.Section{Tag: tag, Title: title, Text: text})
	}
	return out
}

func headingTag(re *regexp.Regexp, content string, loc []int) (string, string) {
	group := func(n int) string {
		if loc[2*n] < 0 {
			return ""
		}
		return strings.TrimSpace(content[loc[2*n]:loc[2*n+1]])
	}
	if re == proxyHeadingRe {
		h := group(1)
		return slug(h), titleCase(h)
	}
	num := strings.ToUpper(group(1))
	title := "Item " + num
	if rest := strings.TrimSpace(group(2)); rest != "" {
		title += ". " + rest
	}
	return "item_" + slug(strings.ToLower(num)), title
}

func slug(s string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if len(w) > 3 || i == 0 {
			r, size := utf8.DecodeRuneInString(w)
			words[i] = string(unicode.ToUpper(r)) + w[size:]
		}
	}
	return strings.Join(words, " ")
}

// allowSection reports whether a section passes the allow-list. Entries match the tag
// or a case-insensitive substring of the title. An empty list allows everything.
func allowSection(s filing.Section, allow []string) bool {
	if len(allow) == 0 {
		return true
	}
	title := strings.ToLower(s.Title)
	for _, a := range allow {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if a == s.Tag || strings.HasPrefix(s.Tag, a+"_") || strings.Contains(title, a) {
			return true
		}
	}
	return false
}
