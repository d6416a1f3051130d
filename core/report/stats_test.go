package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredMinAttendance(t *testing.T) {
	assert.Equal(t, 80, RequiredMinAttendance("80% attendance min to pass"))
	assert.Equal(t, 75, RequiredMinAttendance("attendance min to pass 75% (of 20)"))
	assert.Equal(t, 0, RequiredMinAttendance(NotAvailable))
}

func TestNewStudentReport(t *testing.T) {
	gd := parse("G - Lv1,DAY 1,DAY 2,DAY 3,DAY 4\nDate:,a,b,c,d\n75% attendance min to pass\nJane,x,12,-,x\nSam,-,-,-,x", "G")

	rep, err := NewStudentReport(gd, "Jane")
	require.NoError(t, err)
	assert.Equal(t, Tally{OnTime: 2, Late: 1, Absent: 1, MinutesLate: 12}, rep.Tally)
	assert.Equal(t, 4, rep.SessionsTracked)
	require.NotNil(t, rep.AttendanceRate)
	assert.InDelta(t, 75.0, *rep.AttendanceRate, 1e-9)
	assert.Equal(t, 75, rep.RequiredMinAttendance)
	assert.True(t, rep.MeetsRequirement)

	rep, err = NewStudentReport(gd, "Sam")
	require.NoError(t, err)
	assert.InDelta(t, 25.0, *rep.AttendanceRate, 1e-9)
	assert.False(t, rep.MeetsRequirement)

	_, err = NewStudentReport(gd, "Nobody")
	assert.Equal(t, ErrStudentNotFound, err)
}

func TestNewStudentReport_noSessions(t *testing.T) {
	gd := parse("G,DAY 1\nJane,x", "G")

	rep, err := NewStudentReport(gd, "Jane")
	require.NoError(t, err)
	assert.Nil(t, rep.AttendanceRate)
	assert.False(t, rep.MeetsRequirement)
}

func TestNewGroupOverview(t *testing.T) {
	gd := parse("G,DAY 1,DAY 2\nDate:,a,b\nJane,x,5\nSam,-,x", "G")

	ov := NewGroupOverview(gd)
	assert.Equal(t, 2, ov.ClassesTracked)
	assert.Equal(t, 4, ov.TotalStudentSessions)
	assert.Equal(t, Tally{OnTime: 2, Late: 1, Absent: 1, MinutesLate: 5}, ov.Overall)
	assert.Equal(t, ov.TotalStudentSessions, ov.Overall.Tracked())
	assert.Equal(t, []StudentTally{
		{Student: "Jane", Tally: Tally{OnTime: 1, Late: 1, MinutesLate: 5}},
		{Student: "Sam", Tally: Tally{OnTime: 1, Absent: 1}},
	}, ov.Students)
}

func TestSuggestStudents(t *testing.T) {
	gd := parse("G,DAY 1\nDate:,a\nJane Doe,x\nJohn Smith,x\nJoanna Doe,x", "G")

	assert.Equal(t, []string{"Jane Doe", "Joanna Doe"}, SuggestStudents(gd, "jane doe"))
	assert.Equal(t, []string{"John Smith"}, SuggestStudents(gd, "Jon Smith"))
	assert.Empty(t, SuggestStudents(gd, "Zed"))
	assert.Empty(t, SuggestStudents(gd, " "))
}
