package report

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/trezcool/classreport/core"
)

// Rule names, in precedence order. The header rule only ever applies to the first row.
const (
	RuleHeader        = "header"
	RuleDate          = "date"
	RuleProgress      = "progress"
	RuleAttendanceMin = "attendance-min"
	RuleMaterialsLink = "materials-link"
	RuleDuration      = "duration"
	RuleFrequency     = "frequency"
	RuleDescriptor    = "descriptor"
	RuleStudent       = "student"
)

const (
	dateLabel          = "Date:"
	progressLabel      = "Avance:"
	attendanceMinLabel = "attendance min to pass"
	materialsLabel     = "Link for materials:"
	frequencyMarker    = "week"
)

var (
	durationRegex = regexp.MustCompile(`(?i)^\d+(\.\d+)?h(r)?$`)
	levelFragment = regexp.MustCompile(`(?i)lv`)
)

// rule is one row classification: the first rule whose match returns true is applied.
type rule struct {
	name  string
	match func(st *parseState, r row) bool
	apply func(st *parseState, r row)
}

// newRules returns the row rules in their precedence order.
// The order is part of the parser's contract: ambiguous rows go to the earliest rule.
func (p *Parser) newRules() []rule {
	return []rule{
		{name: RuleDate, match: isDateRow, apply: applyDateRow},
		{name: RuleProgress, match: isProgressRow, apply: applyProgressRow},
		{name: RuleAttendanceMin, match: isAttendanceMinRow, apply: applyAttendanceMinRow},
		{name: RuleMaterialsLink, match: isMaterialsRow, apply: applyMaterialsRow},
		{name: RuleDuration, match: isDurationRow, apply: applyDurationRow},
		{name: RuleFrequency, match: isFrequencyRow, apply: applyFrequencyRow},
		{name: RuleDescriptor, match: p.isDescriptorRow, apply: applyDescriptorRow},
		{name: RuleStudent, match: p.isStudentRow, apply: applyStudentRow},
	}
}

func (p *Parser) classify(st *parseState, r row) (rule, bool) {
	for _, rl := range p.rules {
		if rl.match(st, r) {
			return rl, true
		}
	}
	return rule{}, false
}

// Date row

func isDateRow(_ *parseState, r row) bool {
	return r.first == dateLabel
}

func applyDateRow(st *parseState, r row) {
	for _, cell := range r.trailing() {
		if cell = strings.TrimSpace(cell); cell != "" {
			st.dates = append(st.dates, cell)
		}
	}
}

// Progress row: empty cells are kept to stay aligned with the days.

func isProgressRow(_ *parseState, r row) bool {
	return r.first == progressLabel
}

func applyProgressRow(st *parseState, r row) {
	for _, cell := range r.trailing() {
		st.progressRaw = append(st.progressRaw, strings.TrimSpace(cell))
	}
}

// Attendance minimum row

func isAttendanceMinRow(_ *parseState, r row) bool {
	return strings.Contains(r.first, attendanceMinLabel)
}

func applyAttendanceMinRow(st *parseState, r row) {
	st.attendanceMin = r.first
	if extra := r.cell(1); extra != "" {
		st.attendanceMin += " " + extra
	}
}

// Materials link row

func isMaterialsRow(_ *parseState, r row) bool {
	return strings.Contains(r.first, materialsLabel)
}

func applyMaterialsRow(st *parseState, r row) {
	if link := r.cell(1); link != "" {
		st.materialsLink = link
	}
}

// Duration row

func findCell(r row, pred func(string) bool) (string, bool) {
	for _, cell := range r.cells {
		if cell = strings.TrimSpace(cell); pred(cell) {
			return cell, true
		}
	}
	return "", false
}

func isDurationRow(_ *parseState, r row) bool {
	_, ok := findCell(r, durationRegex.MatchString)
	return ok
}

func applyDurationRow(st *parseState, r row) {
	found, _ := findCell(r, durationRegex.MatchString)
	switch {
	case st.duration == NotAvailable:
		st.duration = found
	case !strings.Contains(st.duration, found):
		st.addInfo(found)
	}
}

// Frequency row

func hasFrequency(cell string) bool {
	return strings.Contains(strings.ToLower(cell), frequencyMarker)
}

func isFrequencyRow(_ *parseState, r row) bool {
	_, ok := findCell(r, hasFrequency)
	return ok
}

func applyFrequencyRow(st *parseState, r row) {
	found, _ := findCell(r, hasFrequency)
	switch {
	case st.frequency == NotAvailable:
		st.frequency = found
	case !strings.Contains(st.frequency, found):
		st.addInfo(found)
	}
	for _, cell := range r.trailing() {
		if cell = strings.TrimSpace(cell); cell != "" && !st.hasInfo(cell) {
			st.addInfo(cell)
		}
	}
}

// Course descriptor row

func (p *Parser) isDescriptorRow(st *parseState, r row) bool {
	return core.ContainsAny(strings.ToLower(r.first), p.markers) && !strings.Contains(st.attendanceMin, r.first)
}

func applyDescriptorRow(st *parseState, r row) {
	cells := make([]string, 0, len(r.cells))
	for _, cell := range r.cells {
		if cell = strings.TrimSpace(cell); cell != "" {
			cells = append(cells, cell)
		}
	}
	line := strings.Join(cells, " ")
	if line != "" && !st.hasInfo(line) && line != st.groupID {
		st.addInfo(line)
	}
}

// Student attendance row (fallback)

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.ToUpper(r) == r
}

func (p *Parser) isStudentRow(st *parseState, r row) bool {
	if r.first == "" || !startsUpper(r.first) || st.isDayHeader(r.first) {
		return false
	}
	if levelFragment.MatchString(r.first) || core.ContainsAny(r.first, p.exclusions) {
		return false
	}
	for _, cell := range r.trailing() {
		if IsAttendanceToken(cell) {
			return true
		}
	}
	return false
}

func applyStudentRow(st *parseState, r row) {
	if _, ok := st.attendanceRaw[r.first]; ok {
		return // first occurrence wins
	}
	st.studentNames = append(st.studentNames, r.first)
	st.attendanceRaw[r.first] = r.trailing()
}
