package parser

import "strings"

// SummaryRowKind is the aggregate a summary row carries for every subject.
type SummaryRowKind int

const (
	KindNone SummaryRowKind = iota
	KindPercentage
	KindTotal
	KindPresent
	KindAbsent
)

func (k SummaryRowKind) String() string {
	switch k {
	case KindPercentage:
		return "percentage"
	case KindTotal:
		return "total"
	case KindPresent:
		return "present"
	case KindAbsent:
		return "absent"
	default:
		return "none"
	}
}

// labelRule matches a row label that contains one of some, contains every
// substring of all, or equals one of exact.
type labelRule struct {
	kind  SummaryRowKind
	some  []string
	all   []string
	exact []string
}

func (r labelRule) matches(label string) bool {
	for _, e := range r.exact {
		if label == e {
			return true
		}
	}
	for _, s := range r.some {
		if strings.Contains(label, s) {
			return true
		}
	}
	if len(r.all) == 0 {
		return false
	}
	for _, s := range r.all {
		if !strings.Contains(label, s) {
			return false
		}
	}
	return true
}

// summaryRules is evaluated top to bottom; the first matching rule wins.
// Matching is case-sensitive.
var summaryRules = []labelRule{
	{kind: KindPercentage, some: []string{"Overall (%)", "Overall%", "Attendance %", "Percentage"}},
	{kind: KindTotal, some: []string{"Overall Class", "Total Classes", "Total Class"}},
	{kind: KindPresent, all: []string{"Present", "Overall"}, exact: []string{"P", "Present"}},
	{kind: KindAbsent, all: []string{"Absent", "Overall"}, exact: []string{"A", "Absent"}},
}

// ClassifyLabel maps a row label to its summary kind, or KindNone.
func ClassifyLabel(label string) SummaryRowKind {
	for _, rule := range summaryRules {
		if rule.matches(label) {
			return rule.kind
		}
	}
	return KindNone
}
