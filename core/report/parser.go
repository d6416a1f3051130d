package report

import (
	"regexp"
	"strings"

	"github.com/trezcool/classreport/core"
)

const (
	defaultCourseName  = "Unknown Course"
	defaultCourseLevel = "Unknown Level"

	nameSeparator = " - "
	dayPrefix     = "DAY"
)

var levelRegex = regexp.MustCompile(`(?i)LV\s*(\d+)`)

type Options struct {
	// StudentExclusions are organization/program name fragments that never start a student row.
	// nil means core.DefaultStudentExclusions.
	StudentExclusions []string
	// DescriptorMarkers are lowercase fragments marking course-descriptor rows.
	// nil means core.DefaultDescriptorMarkers.
	DescriptorMarkers []string
}

// Parser turns loosely formatted, comma separated group blocks into GroupData.
// A Parser is immutable and safe for concurrent use.
type Parser struct {
	exclusions []string
	markers    []string
	rules      []rule
}

func NewParser(opts Options) *Parser {
	p := &Parser{
		exclusions: opts.StudentExclusions,
		markers:    make([]string, 0, len(opts.DescriptorMarkers)),
	}
	if p.exclusions == nil {
		p.exclusions = core.DefaultStudentExclusions
	}
	markers := opts.DescriptorMarkers
	if markers == nil {
		markers = core.DefaultDescriptorMarkers
	}
	for _, m := range markers {
		if m = core.CleanString(m, true /* lower */); m != "" {
			p.markers = append(p.markers, m)
		}
	}
	p.rules = p.newRules()
	return p
}

// row is one input line split on commas. Cells are kept raw (untrimmed);
// first is the trimmed first cell.
type row struct {
	cells []string
	first string
}

func (r row) trailing() []string {
	if len(r.cells) < 2 {
		return nil
	}
	return r.cells[1:]
}

func (r row) cell(i int) string {
	if i < len(r.cells) {
		return strings.TrimSpace(r.cells[i])
	}
	return ""
}

// parseState accumulates what the rules extract from the rows of one block.
type parseState struct {
	groupID string

	courseName    string
	courseLevel   string
	attendanceMin string
	duration      string
	frequency     string
	materialsLink string
	additional    []string

	dayHeaders    []string
	dates         []string
	progressRaw   []string
	studentNames  []string
	attendanceRaw map[string][]string
}

func newParseState(groupID string) *parseState {
	return &parseState{
		groupID:       groupID,
		courseName:    defaultCourseName,
		courseLevel:   defaultCourseLevel,
		attendanceMin: NotAvailable,
		duration:      NotAvailable,
		frequency:     NotAvailable,
		materialsLink: NotAvailable,
		attendanceRaw: make(map[string][]string),
	}
}

func (st *parseState) addInfo(info string) {
	st.additional = append(st.additional, info)
}

func (st *parseState) hasInfo(info string) bool {
	for _, i := range st.additional {
		if i == info {
			return true
		}
	}
	return false
}

func (st *parseState) isDayHeader(s string) bool {
	for _, d := range st.dayHeaders {
		if d == s {
			return true
		}
	}
	return false
}

func splitRows(raw string) []row {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	rows := make([]row, 0, len(lines))
	for _, line := range lines {
		cells := strings.Split(strings.TrimSuffix(line, "\r"), ",")
		rows = append(rows, row{cells: cells, first: strings.TrimSpace(cells[0])})
	}
	return rows
}

// Parse converts one group's raw block into GroupData. It never fails:
// malformed or missing data degrades to defaults. Parse is deterministic.
func (p *Parser) Parse(raw, groupID string) GroupData {
	st := newParseState(groupID)
	rows := splitRows(raw)

	parseHeader(st, rows[0])
	for _, r := range rows[1:] {
		if r.first == "" {
			continue
		}
		if rl, ok := p.classify(st, r); ok {
			rl.apply(st, r)
		}
	}
	return st.build()
}

// ParseAll parses every raw group, preserving input order.
func (p *Parser) ParseAll(raws []RawGroup) []GroupData {
	all := make([]GroupData, 0, len(raws))
	for _, rg := range raws {
		all = append(all, p.Parse(rg.Data, rg.Name))
	}
	return all
}

// parseHeader handles row 0: the group display name and the day labels.
func parseHeader(st *parseState, r row) {
	if r.first == "" {
		return
	}
	fullName := r.first
	parts := strings.Split(fullName, nameSeparator)
	if name := strings.TrimSpace(parts[0]); name != "" {
		st.courseName = name
	} else {
		st.courseName = fullName
	}

	if len(parts) > 1 {
		lastPart := parts[len(parts)-1]
		switch {
		case strings.HasPrefix(lastPart, "Lv") || strings.HasPrefix(lastPart, "LV"):
			st.courseLevel = strings.TrimSpace(lastPart)
		case levelRegex.MatchString(fullName):
			st.courseLevel = levelRegex.FindString(fullName)
		case core.ContainsAny(lastPart, []string{"Reg", "Express", "Finance"}):
			st.courseLevel = lastPart
		}
	} else if lvl := levelRegex.FindString(fullName); lvl != "" {
		st.courseLevel = lvl
	}

	for _, cell := range r.trailing() {
		if strings.HasPrefix(cell, dayPrefix) {
			st.dayHeaders = append(st.dayHeaders, strings.TrimSpace(cell))
		}
	}
}

func (st *parseState) build() GroupData {
	// days beyond the shorter of the header and date lists are dropped
	dayCount := len(st.dayHeaders)
	if len(st.dates) < dayCount {
		dayCount = len(st.dates)
	}
	allDays := make([]SessionDay, 0, dayCount)
	for i := 0; i < dayCount; i++ {
		allDays = append(allDays, SessionDay{Day: st.dayHeaders[i], Date: st.dates[i]})
	}

	attendance := make([]AttendanceRecord, 0, len(st.studentNames)*dayCount)
	for _, student := range st.studentNames {
		tokens := st.attendanceRaw[student]
		for i, day := range allDays {
			var token string
			if i < len(tokens) {
				token = tokens[i]
			}
			status, minutes := DecodeStatus(token)
			attendance = append(attendance, AttendanceRecord{
				Student:     student,
				Date:        day.Date,
				Day:         day.Day,
				Status:      status,
				MinutesLate: minutes,
			})
		}
	}

	progress := make([]ProgressRecord, 0, dayCount)
	for i, day := range allDays {
		if i < len(st.progressRaw) && st.progressRaw[i] != "" {
			progress = append(progress, ProgressRecord{Day: day.Day, Date: day.Date, Note: st.progressRaw[i]})
		}
	}

	additional := make([]string, 0, len(st.additional))
	seen := make(map[string]struct{}, len(st.additional))
	for _, info := range st.additional {
		if info == "" {
			continue
		}
		if _, ok := seen[info]; ok {
			continue
		}
		seen[info] = struct{}{}
		additional = append(additional, info)
	}

	students := make([]string, len(st.studentNames))
	copy(students, st.studentNames)

	return GroupData{
		GroupName: st.groupID,
		Metadata: CourseMetadata{
			Name:           st.courseName,
			Level:          st.courseLevel,
			GroupName:      st.groupID,
			AttendanceMin:  st.attendanceMin,
			Duration:       st.duration,
			Frequency:      st.frequency,
			MaterialsLink:  st.materialsLink,
			AllDays:        allDays,
			StudentNames:   students,
			AdditionalInfo: additional,
		},
		Attendance: attendance,
		Progress:   progress,
	}
}
