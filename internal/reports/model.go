package reports

const (
	// Date range constants
	DateRangeDaily   = "daily"
	DateRangeWeekly  = "weekly"
	DateRangeMonthly = "monthly"
	DateRangeYearly  = "yearly"
	DateRangeCustom  = "custom"
	DateRangeAll     = "all"

	// Export format constants
	FormatCSV   = "csv"
	FormatExcel = "xlsx"
	FormatPDF   = "pdf"
	FormatICS   = "ics"

	// formatExcelAlias is accepted for compatibility with older clients.
	formatExcelAlias = "excel"
)

const (
	contentTypeCSV   = "text/csv"
	contentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF   = "application/pdf"
	contentTypeICS   = "text/calendar; charset=utf-8"
)

// ExportRequest holds the query parameters of an export.
type ExportRequest struct {
	Format    string `form:"format"`
	DateRange string `form:"range"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}
