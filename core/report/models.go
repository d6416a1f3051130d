package report

import "github.com/pkg/errors"

var (
	ErrGroupNotFound   = errors.New("group not found")
	ErrStudentNotFound = errors.New("student not found")
)

// Status is a student's attendance status for one session day.
type Status string

const (
	StatusOnTime Status = "On-time"
	StatusLate   Status = "Late"
	StatusAbsent Status = "Absent"
)

// NotAvailable is the placeholder used for metadata missing from the raw data.
const NotAvailable = "N/A"

type (
	AttendanceRecord struct {
		Student     string `json:"student"`
		Date        string `json:"date"`
		Day         string `json:"day"`
		Status      Status `json:"status"`
		MinutesLate int    `json:"minutesLate"`
	}

	ProgressRecord struct {
		Day  string `json:"day"`
		Date string `json:"date"`
		Note string `json:"note"`
	}

	// SessionDay is one scheduled class occurrence. Day and Date are opaque labels.
	SessionDay struct {
		Day  string `json:"day"`
		Date string `json:"date"`
	}

	CourseMetadata struct {
		Name           string       `json:"name"`
		Level          string       `json:"level"`
		GroupName      string       `json:"groupName"`
		AttendanceMin  string       `json:"attendanceMin"`
		Duration       string       `json:"duration"`
		Frequency      string       `json:"frequency"`
		MaterialsLink  string       `json:"materialsLink"`
		AllDays        []SessionDay `json:"allDays"`
		StudentNames   []string     `json:"studentNames"`
		AdditionalInfo []string     `json:"additionalInfo"`
	}

	// GroupData is the parsed form of one raw group block. It is never mutated once built.
	GroupData struct {
		GroupName  string             `json:"groupName"`
		Metadata   CourseMetadata     `json:"metadata"`
		Attendance []AttendanceRecord `json:"attendance"`
		Progress   []ProgressRecord   `json:"progress"`
	}

	// RawGroup is one group's unparsed text block keyed by its group name.
	RawGroup struct {
		Name string
		Data string
	}
)

// HasStudent reports whether name is one of the group's students.
func (gd GroupData) HasStudent(name string) bool {
	for _, s := range gd.Metadata.StudentNames {
		if s == name {
			return true
		}
	}
	return false
}

// StudentAttendance returns the attendance records of a single student, in day order.
func (gd GroupData) StudentAttendance(student string) []AttendanceRecord {
	recs := make([]AttendanceRecord, 0, len(gd.Metadata.AllDays))
	for _, rec := range gd.Attendance {
		if rec.Student == student {
			recs = append(recs, rec)
		}
	}
	return recs
}
