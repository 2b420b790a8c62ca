package search

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kailas-cloud/edgarsearch/internal/domain/filing"
)

func annualBody() string {
	para := strings.Repeat("This paragraph describes the business in ordinary narrative language. ", 4)
	return "ANNUAL REPORT\n" +
		"Item 1. Business\n" + para + "\n" +
		"Item 1A. Risk Factors\n" + para + "cybersecurity incidents could harm us.\n" +
		"Item 2. Properties\nShort.\n" +
		"Item 7. Management's Discussion and Analysis\n" + para + "\n"
}

func TestSectionize_AnnualReport(t *testing.T) {
	secs := Sectionize("10-K", annualBody())
	tags := map[string]filing.Section{}
	for _, s := range secs {
		tags[s.Tag] = s
	}
	if _, ok := tags[FullDocumentTag]; !ok {
		t.Error("expected full-document section")
	}
	rf, ok := tags["item_1a"]
	if !ok {
		t.Fatalf("expected item_1a, got %v", keys(tags))
	}
	if rf.Title != "Item 1A. Risk Factors" {
		t.Errorf("unexpected title %q", rf.Title)
	}
	if !strings.Contains(rf.Text, "cybersecurity") {
		t.Error("risk factor text missing")
	}
	if _, ok := tags["item_2"]; ok {
		t.Error("short section should be dropped")
	}
	if _, ok := tags["item_7"]; !ok {
		t.Error("expected item_7")
	}
}

func TestSectionize_CurrentReport(t *testing.T) {
	para := strings.Repeat("The registrant entered into a definitive agreement with the counterparty. ", 3)
	body := "Item 1.01 Entry into a Material Definitive Agreement\n" + para + "\nItem 9.01 Financial Statements and Exhibits\n" + para
	secs := Sectionize("8-K", body)
	found := map[string]bool{}
	for _, s := range secs {
		found[s.Tag] = true
	}
	if !found["item_1_01"] || !found["item_9_01"] {
		t.Errorf("expected 8-K items, got %v", found)
	}
}

func TestSectionize_ProxyHeadings(t *testing.T) {
	para := strings.Repeat("Our named executive officers received base salary and annual incentives. ", 3)
	body := "EXECUTIVE COMPENSATION\n" + para + "\nELECTION OF DIRECTORS\n" + para
	secs := Sectionize("DEF 14A", body)
	found := map[string]string{}
	for _, s := range secs {
		found[s.Tag] = s.Title
	}
	if found["executive_compensation"] != "Executive Compensation" {
		t.Errorf("expected executive compensation section, got %v", found)
	}
	if _, ok := found["election_of_directors"]; !ok {
		t.Errorf("expected election of directors section, got %v", found)
	}
}

func TestSectionize_OtherFormsWholeBodyOnly(t *testing.T) {
	body := "Item 1. Something\n" + strings.Repeat("text ", 50)
	secs := Sectionize("4", body)
	if len(secs) != 1 || secs[0].Tag != FullDocumentTag {
		t.Errorf("expected only full document, got %+v", secs)
	}
}

func TestSectionize_TooShort(t *testing.T) {
	if secs := Sectionize("10-K", "tiny"); len(secs) != 0 {
		t.Errorf("expected no sections, got %+v", secs)
	}
}

func TestAllowSection(t *testing.T) {
	s := filing.Section{Tag: "item_1a", Title: "Item 1A. Risk Factors"}
	if !allowSection(s, nil) {
		t.Error("empty allow-list must allow")
	}
	if !allowSection(s, []string{"item_1a"}) || !allowSection(s, []string{"Risk Factors"}) {
		t.Error("expected tag and title matches")
	}
	if allowSection(s, []string{"item_7"}) {
		t.Error("unexpected match")
	}
	dup := filing.Section{Tag: "item_1a_2", Title: "Item 1A. Risk Factors"}
	if !allowSection(dup, []string{"item_1a"}) {
		t.Error("expected repeated heading to match its base tag")
	}
}

func keys(m map[string]filing.Section) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"RISK FACTORS", "Risk Factors"},
		{"legal proceedings and other matters", "Legal Proceedings and Other Matters"},
		{"ÉTATS FINANCIERS", "États Financiers"},
		{"öffnungsklausel und übernahme", "Öffnungsklausel und Übernahme"},
	}
	for _, tt := range tests {
		got := titleCase(tt.in)
		if !utf8.ValidString(got) {
			t.Errorf("titleCase(%q) produced invalid UTF-8 %q", tt.in, got)
		}
		if got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
