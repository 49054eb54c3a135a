package feedback

import "time"

// Resolution is the customer's answer to "was your problem solved?"
type Resolution string

const (
	ResolutionSolved    Resolution = "sim"
	ResolutionPartial   Resolution = "parcialmente"
	ResolutionNotSolved Resolution = "nao"
)

// Resolutions lists every answer in display order
var Resolutions = []Resolution{ResolutionSolved, ResolutionPartial, ResolutionNotSolved}

func (r Resolution) IsValid() bool {
	switch r {
	case ResolutionSolved, ResolutionPartial, ResolutionNotSolved:
		return true
	}
	return false
}

// Feedback is one customer survey answer about an attendance
type Feedback struct {
	ID              string
	Attendant       string
	GeneralRating   int
	ClarityRating   int
	ProblemResolved Resolution
	Module          *string
	Comments        *string
	AttendanceID    *string
	Company         *string
	CompanyKey      *string
	Requester       *string
	CreatedAt       time.Time
}

// Module is a product area feedback can be filed against
type Module struct {
	ID   string
	Name string
}

// Period names accepted by the performance report
const (
	Period7Days  = "7days"
	Period30Days = "30days"
	Period90Days = "90days"
	PeriodAll    = "all"
)

// Filter narrows the feedback set. Zero values disable a predicate.
type Filter struct {
	Since           *time.Time
	Attendant       string
	Module          string
	ProblemResolved Resolution
}

// ListFilter selects one page of feedback, newest first. Zero values disable a predicate.
type ListFilter struct {
	Attendant       string
	Module          string
	GeneralRating   int
	ProblemResolved Resolution
	Page            int
	Limit           int
}

// Offset is the number of rows skipped before the page
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// AttendantPerformance aggregates one attendant's feedback. Values are unrounded.
type AttendantPerformance struct {
	Attendant      string
	FeedbackCount  int
	AverageRating  float64
	AverageClarity float64
	Solved         int
	Partial        int
	NotSolved      int
	ResolutionRate float64
	Score          float64
}

// ModulePerformance aggregates the feedback of one module
type ModulePerformance struct {
	Module         string
	FeedbackCount  int
	AverageRating  float64
	AverageClarity float64
	ResolutionRate float64
}

// TendencyPoint is the average rating of one calendar day
type TendencyPoint struct {
	Date          time.Time
	FeedbackCount int
	AverageRating float64
}

// Overview holds the headline numbers over the whole filtered set
type Overview struct {
	FeedbackCount  int
	AverageRating  float64
	AverageClarity float64
	ResolutionRate float64
}

// Performance is the full feedback performance report
type Performance struct {
	Overview               Overview
	RatingDistribution     [5]int
	ResolutionDistribution map[Resolution]int
	Attendants             []AttendantPerformance
	Modules                []ModulePerformance
	BestAttendant          string
	WorstAttendant         string
	BestModule             string
	Tendency               []TendencyPoint
}
