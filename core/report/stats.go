package report

import (
	"regexp"
	"strconv"
)

var percentRegex = regexp.MustCompile(`(\d+)%`)

type (
	Tally struct {
		OnTime      int `json:"onTime"`
		Late        int `json:"late"`
		Absent      int `json:"absent"`
		MinutesLate int `json:"totalMinutesLate"`
	}

	StudentReport struct {
		Student   string `json:"student"`
		GroupName string `json:"groupName"`
		Tally
		SessionsTracked int `json:"sessionsTracked"`
		// AttendanceRate is the share of sessions attended (on time or late), in percent.
		// It is nil when no session was tracked.
		AttendanceRate        *float64           `json:"attendanceRate"`
		RequiredMinAttendance int                `json:"requiredMinAttendance"`
		MeetsRequirement      bool               `json:"meetsRequirement"`
		Records               []AttendanceRecord `json:"records"`
	}

	StudentTally struct {
		Student string `json:"student"`
		Tally
	}

	GroupOverview struct {
		Metadata             CourseMetadata   `json:"metadata"`
		ClassesTracked       int              `json:"classesTracked"`
		TotalStudentSessions int              `json:"totalStudentSessions"`
		Overall              Tally            `json:"overall"`
		Students             []StudentTally   `json:"students"`
		Progress             []ProgressRecord `json:"progress"`
	}

	GroupSummary struct {
		GroupName    string `json:"groupName"`
		Name         string `json:"name"`
		Level        string `json:"level"`
		StudentCount int    `json:"studentCount"`
		DayCount     int    `json:"dayCount"`
	}

	// DirectoryEntry lists every group a student belongs to.
	DirectoryEntry struct {
		Student string   `json:"student"`
		Groups  []string `json:"groups"`
	}
)

func (t Tally) Tracked() int {
	return t.OnTime + t.Late + t.Absent
}

// TallyRecords counts statuses and sums the minutes late of recs.
func TallyRecords(recs []AttendanceRecord) Tally {
	var t Tally
	for _, rec := range recs {
		switch rec.Status {
		case StatusOnTime:
			t.OnTime++
		case StatusLate:
			t.Late++
		default:
			t.Absent++
		}
		t.MinutesLate += rec.MinutesLate
	}
	return t
}

// RequiredMinAttendance extracts the first "NN%" of an attendance threshold descriptor (0 if none).
func RequiredMinAttendance(attendanceMin string) int {
	m := percentRegex.FindStringSubmatch(attendanceMin)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// NewStudentReport builds the attendance report of one student of gd.
func NewStudentReport(gd GroupData, student string) (StudentReport, error) {
	if !gd.HasStudent(student) {
		return StudentReport{}, ErrStudentNotFound
	}
	recs := gd.StudentAttendance(student)
	t := TallyRecords(recs)
	rep := StudentReport{
		Student:               student,
		GroupName:             gd.GroupName,
		Tally:                 t,
		SessionsTracked:       len(recs),
		RequiredMinAttendance: RequiredMinAttendance(gd.Metadata.AttendanceMin),
		Records:               recs,
	}
	if rep.SessionsTracked > 0 {
		rate := float64(t.OnTime+t.Late) / float64(rep.SessionsTracked) * 100
		rep.AttendanceRate = &rate
		rep.MeetsRequirement = rate >= float64(rep.RequiredMinAttendance)
	}
	return rep, nil
}

func NewGroupOverview(gd GroupData) GroupOverview {
	ov := GroupOverview{
		Metadata:             gd.Metadata,
		ClassesTracked:       len(gd.Metadata.AllDays),
		TotalStudentSessions: len(gd.Metadata.AllDays) * len(gd.Metadata.StudentNames),
		Overall:              TallyRecords(gd.Attendance),
		Students:             make([]StudentTally, 0, len(gd.Metadata.StudentNames)),
		Progress:             gd.Progress,
	}
	for _, student := range gd.Metadata.StudentNames {
		ov.Students = append(ov.Students, StudentTally{Student: student, Tally: TallyRecords(gd.StudentAttendance(student))})
	}
	return ov
}

func Summarize(groups []GroupData) []GroupSummary {
	sums := make([]GroupSummary, 0, len(groups))
	for _, gd := range groups {
		sums = append(sums, GroupSummary{
			GroupName:    gd.GroupName,
			Name:         gd.Metadata.Name,
			Level:        gd.Metadata.Level,
			StudentCount: len(gd.Metadata.StudentNames),
			DayCount:     len(gd.Metadata.AllDays),
		})
	}
	return sums
}

// StudentDirectory maps every student of every group to the groups they belong to,
// in first-seen order. It does not depend on which group is currently selected.
func StudentDirectory(groups []GroupData) []DirectoryEntry {
	var entries []DirectoryEntry
	index := make(map[string]int)
	for _, gd := range groups {
		for _, student := range gd.Metadata.StudentNames {
			i, ok := index[student]
			if !ok {
				i = len(entries)
				index[student] = i
				entries = append(entries, DirectoryEntry{Student: student})
			}
			entries[i].Groups = append(entries[i].Groups, gd.Metadata.GroupName)
		}
	}
	return entries
}
