package report

import (
	"fmt"
	"strings"
)

// ContextLimits bounds the context document handed to the language model.
// Zero values mean no limit.
type ContextLimits struct {
	// MaxProgressNotes keeps only the most recent progress notes.
	MaxProgressNotes int
	// MaxBytes caps the document size. Progress notes are dropped first, oldest first;
	// attendance aggregates and the student directory are never trimmed.
	MaxBytes int
}

// BuildContext renders the tag-delimited knowledge document about current,
// followed by a directory of the students of all groups.
func BuildContext(current GroupData, all []GroupData, limits ContextLimits) string {
	notes := current.Progress
	if limits.MaxProgressNotes > 0 && len(notes) > limits.MaxProgressNotes {
		notes = notes[len(notes)-limits.MaxProgressNotes:]
	}

	head := renderGroupHead(current)
	tail := renderDirectory(all)
	progress := renderProgress(notes)

	if limits.MaxBytes > 0 {
		budget := limits.MaxBytes - len(head) - len(tail) - len(progressOpen) - len(progressClose)
		for len(progress) > 0 && progressSize(progress) > budget {
			progress = progress[1:]
		}
	}

	var sb strings.Builder
	sb.WriteString(head)
	sb.WriteString(progressOpen)
	for _, line := range progress {
		sb.WriteString(line)
	}
	sb.WriteString(progressClose)
	sb.WriteString(tail)
	return sb.String()
}

const (
	progressOpen  = "  <full_progress_log_avance>\n"
	progressClose = "  </full_progress_log_avance>\n</full_group_report_data>\n"
)

func renderGroupHead(gd GroupData) string {
	md := gd.Metadata
	info := strings.Join(md.AdditionalInfo, ", ")
	if info == "" {
		info = NotAvailable
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<full_group_report_data for=%q>\n", md.GroupName)
	sb.WriteString("  <group_metadata>\n")
	fmt.Fprintf(&sb, "    Group Name: %s\n", md.GroupName)
	fmt.Fprintf(&sb, "    Course Name: %s\n", md.Name)
	fmt.Fprintf(&sb, "    Course Level: %s\n", md.Level)
	fmt.Fprintf(&sb, "    Minimum Attendance to Pass: %s\n", md.AttendanceMin)
	fmt.Fprintf(&sb, "    Session Duration: %s\n", md.Duration)
	fmt.Fprintf(&sb, "    Session Frequency: %s\n", md.Frequency)
	fmt.Fprintf(&sb, "    Additional Info: %s\n", info)
	sb.WriteString("  </group_metadata>\n")

	sb.WriteString("  <student_specific_attendance>\n")
	for _, student := range md.StudentNames {
		t := TallyRecords(gd.StudentAttendance(student))
		fmt.Fprintf(&sb, "    <student name=%q>\n", student)
		fmt.Fprintf(&sb, "      On-time: %d, Late: %d, Absent: %d, Total Minutes Late: %d\n",
			t.OnTime, t.Late, t.Absent, t.MinutesLate)
		sb.WriteString("    </student>\n")
	}
	sb.WriteString("  </student_specific_attendance>\n")
	return sb.String()
}

func renderProgress(notes []ProgressRecord) []string {
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("    <progress_update day=%q date=%q>%s</progress_update>\n", n.Day, n.Date, n.Note))
	}
	return lines
}

func progressSize(lines []string) int {
	var n int
	for _, l := range lines {
		n += len(l)
	}
	return n
}

func renderDirectory(all []GroupData) string {
	var sb strings.Builder
	sb.WriteString("\n<global_student_directory>\n")
	sb.WriteString("  This is a list of all students and the group(s) they belong to. " +
		"Use this to find a student if they are not in the currently selected group's report.\n")
	for _, entry := range StudentDirectory(all) {
		fmt.Fprintf(&sb, "  <student name=%q groups=%q />\n", entry.Student, strings.Join(entry.Groups, ", "))
	}
	sb.WriteString("</global_student_directory>\n")
	return sb.String()
}
