package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullBlock = `BASF - Lv7,DAY 1,DAY 2,DAY 3,DAY 4
Date:,01/05,03/05,08/05,10/05
Avance:,Unit 1 intro,,Unit 2 past simple,Unit 2 review
80% attendance min to pass,(12 sessions)
Link for materials:,https://example.com/basf7
1.5h,,,
Twice a week,Mon & Wed,online
Regular programme,Business English,
Ana Lopez,x,15 min late,-,x
Ben Ortiz,x,x,29,
Ana Lopez,-,-,-,-
Carla Ruiz,-,5 min lte,x
`

func parse(raw, group string) GroupData {
	return NewParser(Options{}).Parse(raw, group)
}

func TestParser_Parse_scenario(t *testing.T) {
	gd := parse("Acme - Lv3,DAY 1,DAY 2\nDate:,01/05,03/05\nJane,x,20", "Acme - Lv3")

	assert.Equal(t, "Acme - Lv3", gd.GroupName)
	assert.Equal(t, []string{"Jane"}, gd.Metadata.StudentNames)
	assert.Equal(t, []SessionDay{{Day: "DAY 1", Date: "01/05"}, {Day: "DAY 2", Date: "03/05"}}, gd.Metadata.AllDays)
	assert.Equal(t, []AttendanceRecord{
		{Student: "Jane", Date: "01/05", Day: "DAY 1", Status: StatusOnTime, MinutesLate: 0},
		{Student: "Jane", Date: "03/05", Day: "DAY 2", Status: StatusLate, MinutesLate: 20},
	}, gd.Attendance)
	assert.Equal(t, "Acme", gd.Metadata.Name)
	assert.Equal(t, "Lv3", gd.Metadata.Level)
	assert.Empty(t, gd.Progress)
}

func TestParser_Parse_fullBlock(t *testing.T) {
	gd := parse(fullBlock, "BASF Lv7")
	md := gd.Metadata

	assert.Equal(t, "BASF", md.Name)
	assert.Equal(t, "Lv7", md.Level)
	assert.Equal(t, "BASF Lv7", md.GroupName)
	assert.Equal(t, "80% attendance min to pass (12 sessions)", md.AttendanceMin)
	assert.Equal(t, "https://example.com/basf7", md.MaterialsLink)
	assert.Equal(t, "1.5h", md.Duration)
	assert.Equal(t, "Twice a week", md.Frequency)
	assert.Equal(t, []string{"Mon & Wed", "online", "Regular programme Business English"}, md.AdditionalInfo)
	assert.Equal(t, []string{"Ana Lopez", "Ben Ortiz", "Carla Ruiz"}, md.StudentNames)
	require.Len(t, md.AllDays, 4)

	assert.Equal(t, []ProgressRecord{
		{Day: "DAY 1", Date: "01/05", Note: "Unit 1 intro"},
		{Day: "DAY 3", Date: "08/05", Note: "Unit 2 past simple"},
		{Day: "DAY 4", Date: "10/05", Note: "Unit 2 review"},
	}, gd.Progress)

	// the duplicate "Ana Lopez" row is ignored
	ana := gd.StudentAttendance("Ana Lopez")
	require.Len(t, ana, 4)
	assert.Equal(t, StatusOnTime, ana[0].Status)
	assert.Equal(t, AttendanceRecord{Student: "Ana Lopez", Date: "03/05", Day: "DAY 2", Status: StatusLate, MinutesLate: 15}, ana[1])
	assert.Equal(t, StatusAbsent, ana[2].Status)

	ben := gd.StudentAttendance("Ben Ortiz")
	assert.Equal(t, StatusLate, ben[2].Status)
	assert.Equal(t, 29, ben[2].MinutesLate)
	assert.Equal(t, StatusAbsent, ben[3].Status) // empty cell

	carla := gd.StudentAttendance("Carla Ruiz")
	assert.Equal(t, StatusLate, carla[1].Status)
	assert.Equal(t, 5, carla[1].MinutesLate)
	assert.Equal(t, StatusAbsent, carla[3].Status) // row shorter than the day list
}

func TestDecodeStatus(t *testing.T) {
	tests := []struct {
		token       string
		wantStatus  Status
		wantMinutes int
	}{
		{token: "x", wantStatus: StatusOnTime},
		{token: " x ", wantStatus: StatusOnTime},
		{token: "15 min late", wantStatus: StatusLate, wantMinutes: 15},
		{token: "10 min lte", wantStatus: StatusLate, wantMinutes: 10},
		{token: "min late", wantStatus: StatusLate},
		{token: "29", wantStatus: StatusLate, wantMinutes: 29},
		{token: "-", wantStatus: StatusAbsent},
		{token: "", wantStatus: StatusAbsent},
		{token: "X", wantStatus: StatusAbsent},
		{token: "sick", wantStatus: StatusAbsent},
		{token: "99999999999999999999999", wantStatus: StatusLate},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			status, minutes := DecodeStatus(tt.token)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMinutes, minutes)
		})
	}
}

func TestParser_Parse_header(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantName  string
		wantLevel string
		wantDays  int
	}{
		{name: "level suffix", header: "Acme - Lv3,DAY 1", wantName: "Acme", wantLevel: "Lv3", wantDays: 1},
		{name: "upper level suffix", header: "Acme - LV 4,DAY 1,DAY 2", wantName: "Acme", wantLevel: "LV 4", wantDays: 2},
		{name: "level inside name", header: "Omaha LV5 - Tuesday,DAY 1", wantName: "Omaha LV5", wantLevel: "LV5", wantDays: 1},
		{name: "programme suffix", header: "Terminales - Finance,DAY 1", wantName: "Terminales", wantLevel: "Finance", wantDays: 1},
		{name: "unknown suffix", header: "Acme - Morning,DAY 1", wantName: "Acme", wantLevel: defaultCourseLevel, wantDays: 1},
		{name: "no separator with level", header: "FRESNO lv2,DAY 1", wantName: "FRESNO lv2", wantLevel: "lv2", wantDays: 1},
		{name: "no separator", header: "FRESNO,DAY 1,notes,DAY 2", wantName: "FRESNO", wantLevel: defaultCourseLevel, wantDays: 2},
		{name: "empty name", header: ",DAY 1,DAY 2", wantName: defaultCourseName, wantLevel: defaultCourseLevel, wantDays: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gd := parse(tt.header+"\nDate:,a,b,c", "g")
			assert.Equal(t, tt.wantName, gd.Metadata.Name)
			assert.Equal(t, tt.wantLevel, gd.Metadata.Level)
			assert.Len(t, gd.Metadata.AllDays, tt.wantDays)
		})
	}
}

func TestParser_Parse_defaults(t *testing.T) {
	for _, raw := range []string{"", "\n\n", ",,,", "garbage without structure"} {
		gd := parse(raw, "empty")
		md := gd.Metadata
		assert.Equal(t, "empty", gd.GroupName)
		assert.Equal(t, NotAvailable, md.AttendanceMin)
		assert.Equal(t, NotAvailable, md.Duration)
		assert.Equal(t, NotAvailable, md.Frequency)
		assert.Equal(t, NotAvailable, md.MaterialsLink)
		assert.Empty(t, md.StudentNames)
		assert.Empty(t, gd.Attendance)
		assert.Empty(t, gd.Progress)
		assert.NotNil(t, gd.Attendance)
		assert.NotNil(t, md.AdditionalInfo)
	}
}

func TestParser_Parse_dayDateBound(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantDays int
	}{
		{name: "more headers", raw: "G,DAY 1,DAY 2,DAY 3\nDate:,01/01\nAvance:,a,b,c\nSam,x,x,x", wantDays: 1},
		{name: "more dates", raw: "G,DAY 1\nDate:,01/01,02/01,03/01\nAvance:,a,b,c\nSam,x,x,x", wantDays: 1},
		{name: "no dates", raw: "G,DAY 1,DAY 2\nAvance:,a,b\nSam,x,x", wantDays: 0},
		{name: "empty date cells skipped", raw: "G,DAY 1,DAY 2\nDate:,,01/01,,02/01\nAvance:,a,b\nSam,x,x", wantDays: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gd := parse(tt.raw, "G")
			assert.Len(t, gd.Metadata.AllDays, tt.wantDays)
			assert.LessOrEqual(t, len(gd.Progress), tt.wantDays)
			assert.Len(t, gd.Attendance, len(gd.Metadata.StudentNames)*tt.wantDays)
		})
	}
}

func TestParser_Parse_deterministic(t *testing.T) {
	p := NewParser(Options{})
	first := p.Parse(fullBlock, "BASF Lv7")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, p.Parse(fullBlock, "BASF Lv7"))
	}
}

func TestParser_Parse_attendanceCompleteness(t *testing.T) {
	gd := parse(fullBlock, "BASF Lv7")
	assert.Len(t, gd.Attendance, len(gd.Metadata.StudentNames)*len(gd.Metadata.AllDays))
	for _, student := range gd.Metadata.StudentNames {
		recs := gd.StudentAttendance(student)
		for i, day := range gd.Metadata.AllDays {
			assert.Equal(t, day.Day, recs[i].Day)
			assert.Equal(t, day.Date, recs[i].Date)
		}
	}
}

func TestParser_Parse_crlf(t *testing.T) {
	gd := parse("Acme - Lv3,DAY 1,DAY 2\r\nDate:,01/05,03/05\r\nJane,x,20\r\n", "Acme")
	assert.Equal(t, []string{"Jane"}, gd.Metadata.StudentNames)
	assert.Equal(t, "03/05", gd.Metadata.AllDays[1].Date)
	assert.Equal(t, 20, gd.Attendance[1].MinutesLate)
}
