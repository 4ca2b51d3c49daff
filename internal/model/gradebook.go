package model

// GradebookCourseWork is one gradable column of a GradeBook sheet.
// Identity is (ClassID, IDInGradeBook).
type GradebookCourseWork struct {
	Title         string `json:"title"`
	DueDate       string `json:"due_date"`
	CreationTime  string `json:"creation_time"`
	MaxPoints     string `json:"max_points"`
	Weight        string `json:"weight"`
	Category      string `json:"category"`
	Term          string `json:"term"`
	ClassID       string `json:"class_id"`
	IDInGradeBook string `json:"id_in_gradebook"`
	IDInClassroom string `json:"id_in_classroom"`
}

// GradebookStudentSubmission is one student's grade cell for one course work.
// Grade is free text: a number, "E" for exempt, "[x/y]", or empty.
type GradebookStudentSubmission struct {
	StudentID    string  `json:"student_id"`
	StudentName  string  `json:"student_name"`
	ClassID      string  `json:"class_id"`
	CourseWorkID string  `json:"course_work_id"`
	Grade        string  `json:"grade"`
	Percent      float64 `json:"percent"`
	Note         string  `json:"note,omitempty"`
}

type GradebookParent struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// GradebookStudent is rebuilt from the sheet on every read; Email is its identity.
type GradebookStudent struct {
	GradebookID         string                       `json:"gradebook_id"`
	Email               string                       `json:"email"`
	Name                string                       `json:"name"`
	Photo               string                       `json:"photo,omitempty"`
	Comment             string                       `json:"comment,omitempty"`
	FinalGrade          float64                      `json:"final_grade"`
	FinalGradeFormatted string                       `json:"final_grade_formatted"`
	ClassID             string                       `json:"class_id"`
	ClassName           string                       `json:"class_name"`
	Parents             []GradebookParent            `json:"parents"`
	CourseWorks         []GradebookCourseWork        `json:"course_works"`
	Submissions         []GradebookStudentSubmission `json:"submissions"`
}

// HasParent reports whether email is listed among the student's parents.
func (s *GradebookStudent) HasParent(email string) bool {
	for _, p := range s.Parents {
		if p.Email == email {
			return true
		}
	}
	return false
}

// CourseWork returns the course work with the given gradebook column id.
func (s *GradebookStudent) CourseWork(id string) (GradebookCourseWork, bool) {
	for _, cw := range s.CourseWorks {
		if cw.IDInGradeBook == id {
			return cw, true
		}
	}
	return GradebookCourseWork{}, false
}

// Submission returns the student's submission for a course work column id.
func (s *GradebookStudent) Submission(courseWorkID string) (GradebookStudentSubmission, bool) {
	for _, sub := range s.Submissions {
		if sub.CourseWorkID == courseWorkID {
			return sub, true
		}
	}
	return GradebookStudentSubmission{}, false
}

type ReportSortBy string

const (
	SortByNone     ReportSortBy = ""
	SortByCategory ReportSortBy = "Category"
	SortByDate     ReportSortBy = "Date"
	SortByTitle    ReportSortBy = "Title"
	SortByTerm     ReportSortBy = "Term"
)

type LetterGrade struct {
	From   float64 `json:"from"`
	To     float64 `json:"to"`
	Letter string  `json:"letter"`
}

type GradebookSettings struct {
	CourseCode                   string        `json:"course_code"`
	CourseName                   string        `json:"course_name"`
	CoursePeriod                 string        `json:"course_period"`
	TeacherName                  string        `json:"teacher_name"`
	SchoolName                   string        `json:"school_name"`
	SchoolPhone                  string        `json:"school_phone"`
	Decimal                      int           `json:"decimal"`
	Rounding                     string        `json:"rounding"`
	ShowCourseAverage            bool          `json:"show_course_average"`
	ShowCourseMedian             bool          `json:"show_course_median"`
	SendEmailsAsNoReply          bool          `json:"send_emails_as_no_reply"`
	StudentReportSortBy          ReportSortBy  `json:"student_report_sort_by"`
	ReportSchoolNameColor        string        `json:"report_school_name_color"`
	ReportHeadingColor           string        `json:"report_heading_color"`
	ReportAlternatingColorFirst  string        `json:"report_alternating_color_first"`
	ReportAlternatingColorSecond string        `json:"report_alternating_color_second"`
	Terms                        int           `json:"terms"`
	CourseAverage                float64       `json:"course_average"`
	CourseMedian                 float64       `json:"course_median"`
	LetterGrades                 []LetterGrade `json:"letter_grades"`
}
