package dto

// ReportQuery carries report parameters.
// Dates are calendar dates formatted YYYY-MM-DD.
type ReportQuery struct {
	Date      string `form:"date"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}
