package gradebook

// Sheet titles a spreadsheet must carry to be treated as a GradeBook.
const (
	SheetGradeBook    = "GradeBook"
	SheetSettings     = "Settings"
	SheetStatistics   = "Statistics"
	SheetEmailMessage = "Email Message"
)

// Fixed A1 ranges shared with the GradeBook add-on. They must match exactly.
const (
	RangeStudents       = "GradeBook"
	RangeCourseSettings = "Settings!A48:A49"
	RangeSettings       = "Settings!A1:B25"
	RangeLetterGrades   = "Settings!M3:O17"
	RangeStatistics     = "Statistics!A1:N21"
	RangeAverageMedian  = "Statistics!G4:K4"
)

// RequiredSheets lists the sheet titles of a valid GradeBook.
var RequiredSheets = []string{SheetGradeBook, SheetSettings, SheetStatistics, SheetEmailMessage}

// ParentSheets lists the sheets of a parent gradebook in index order.
var ParentSheets = []string{SheetGradeBook, SheetSettings, SheetStatistics}

// Layout is the positional schema of the GradeBook sheet. Every offset the
// mapper reads is declared here.
type Layout struct {
	MaxRows int
	MaxCols int

	// Course work columns start at CourseWorkStartCol and repeat every
	// CourseWorkStep columns. The column after each course work holds the
	// student's percent and, in the header, the term.
	CourseWorkStartCol int
	CourseWorkStep     int

	TitleRow     int
	DueDateRow   int
	MaxPointsRow int
	WeightRow    int
	CategoryRow  int
	TermRow      int

	// Student rows start at StudentStartRow.
	StudentStartRow     int
	PhotoCol            int
	NameCol             int
	FinalFormattedCol   int
	FinalCol            int
	EmailCol            int
	ParentEmailsCol     int
	CommentCol          int
	ParentEmailSplitter string
}

var GradeBookLayout = Layout{
	MaxRows: 207,
	MaxCols: 313,

	CourseWorkStartCol: 13,
	CourseWorkStep:     2,

	TitleRow:     0,
	DueDateRow:   1,
	MaxPointsRow: 2,
	WeightRow:    3,
	CategoryRow:  4,
	TermRow:      4,

	StudentStartRow:     7,
	PhotoCol:            1,
	NameCol:             2,
	FinalFormattedCol:   3,
	FinalCol:            4,
	EmailCol:            5,
	ParentEmailsCol:     7,
	CommentCol:          9,
	ParentEmailSplitter: ",",
}

// CourseInfoLayout addresses RangeCourseSettings.
var CourseInfoLayout = struct {
	Rows, Cols   int
	ClassNameRow int
	ClassIDRow   int
	ValueCol     int
}{
	Rows: 2, Cols: 1,
	ClassNameRow: 0,
	ClassIDRow:   1,
	ValueCol:     0,
}

// SettingsLayout addresses RangeSettings by absolute row; values live in ValueCol.
var SettingsLayout = struct {
	Rows, Cols int
	ValueCol   int

	CourseCode, CourseName, CoursePeriod int
	TeacherName, SchoolName, SchoolPhone int
	Decimal, Rounding                    int
	ShowAverage, ShowMedian, NoReply     int
	SortBy                               int
	SchoolNameColor, HeadingColor        int
	AlternatingFirst, AlternatingSecond  int
	Terms                                int
}{
	Rows: 25, Cols: 2,
	ValueCol: 1,

	CourseCode: 2, CourseName: 3, CoursePeriod: 4,
	TeacherName: 5, SchoolName: 6, SchoolPhone: 7,
	Decimal: 9, Rounding: 10,
	ShowAverage: 11, ShowMedian: 12, NoReply: 13,
	SortBy:          15,
	SchoolNameColor: 18, HeadingColor: 19,
	AlternatingFirst: 20, AlternatingSecond: 21,
	Terms: 24,
}

// AverageMedianLayout addresses RangeAverageMedian.
var AverageMedianLayout = struct {
	Rows, Cols            int
	Row                   int
	AverageCol, MedianCol int
}{
	Rows: 1, Cols: 5,
	Row:        0,
	AverageCol: 0,
	MedianCol:  4,
}

// LetterGradesLayout addresses RangeLetterGrades as (From, To, Letter) triples.
var LetterGradesLayout = struct {
	Rows, Cols             int
	FromCol, ToCol, Letter int
}{
	Rows: 15, Cols: 3,
	FromCol: 0, ToCol: 1, Letter: 2,
}

// ParentSheetLayout is the fixed 13-column layout of a parent gradebook's GradeBook sheet.
var ParentSheetLayout = struct {
	Width          int
	NameRow        int
	EmailRow       int
	FirstWorkRow   int
	ValueCol       int
	TitleCol       int
	MaxPointsCol   int
	WeightCol      int
	CategoryCol    int
	TermCol        int
	DateCol        int
	GradeCol       int
	PercentCol     int
	FinalCol       int
	FinalFormatCol int
	ClassroomIDCol int
	IDCol          int
}{
	Width:          13,
	NameRow:        0,
	EmailRow:       1,
	FirstWorkRow:   2,
	ValueCol:       1,
	TitleCol:       1,
	MaxPointsCol:   2,
	WeightCol:      3,
	CategoryCol:    4,
	TermCol:        5,
	DateCol:        6,
	GradeCol:       7,
	PercentCol:     8,
	FinalCol:       9,
	FinalFormatCol: 10,
	ClassroomIDCol: 11,
	IDCol:          12,
}
