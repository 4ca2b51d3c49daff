package model

type ReportType string

const (
	ReportTypeStandard ReportType = "STANDARD"
	ReportTypeCategory ReportType = "CATEGORY"
	ReportTypeTerm     ReportType = "TERM"
)

const (
	MarkExempted = "Exempted"
	MarkNoGrade  = "No Grade"
	MarkNoMark   = "No Mark"
)

type ReportSubmission struct {
	CourseWorkID string  `json:"course_work_id"`
	StudentID    string  `json:"student_id"`
	Title        string  `json:"title"`
	DueDate      string  `json:"due_date"`
	CreationTime string  `json:"creation_time"`
	MaxPoints    string  `json:"max_points"`
	Grade        string  `json:"grade"`
	Percent      float64 `json:"percent"`
	Note         string  `json:"note,omitempty"`
}

// ReportSection is one block of a student report: the whole gradebook for a
// standard report, one category, or one term.
type ReportSection struct {
	Type        ReportType `json:"type"`
	Category    string     `json:"category,omitempty"`
	Term        string     `json:"term,omitempty"`
	IsGraded    bool       `json:"is_graded"`
	StudentMark string     `json:"student_mark"`
	Percent     string     `json:"percent"`

	TotalMark   float64 `json:"total_mark"`
	TotalPoints float64 `json:"total_points"`

	AverageStudentGrade float64 `json:"average_student_grade"`
	TotalWeight         float64 `json:"total_weight"`
	AverageCatGrade     float64 `json:"average_cat_grade"`

	Submissions []ReportSubmission `json:"submissions"`
}

type StudentReport struct {
	Student          *GradebookStudent  `json:"student"`
	Settings         *GradebookSettings `json:"settings,omitempty"`
	FinalGrade       float64            `json:"final_grade"`
	FinalGradeLetter string             `json:"final_grade_letter"`
	Sections         []ReportSection    `json:"sections"`
}
