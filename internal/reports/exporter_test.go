package reports

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sharath018/event-calendar-backend/internal/event"
)

var fixedNow = time.Date(2024, 6, 12, 15, 4, 5, 0, time.UTC)

func testExporter() *eventExporter {
	return &eventExporter{now: func() time.Time { return fixedNow }}
}

func sampleEvents() []event.Event {
	return []event.Event{
		{ID: "a1", Title: "Team Sync", Start: "2024-06-10", End: "2024-06-11", AllDay: true},
		{ID: "b2", Title: "Review", Description: "Q2 numbers", Location: "Room 4", Start: "2024-06-12T09:00:00Z", End: "2024-06-12T10:30:00Z"},
	}
}

func TestExport_CSV(t *testing.T) {
	data, filename, contentType, err := testExporter().Export(FormatCSV, sampleEvents())
	require.NoError(t, err)
	assert.Equal(t, "events_20240612_150405.csv", filename)
	assert.Equal(t, "text/csv", contentType)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, eventHeaders, records[0])
	assert.Equal(t, []string{"a1", "Team Sync", "", "", "2024-06-10", "2024-06-11", "true"}, records[1])
	assert.Equal(t, "Room 4", records[2][3])
}

func TestExport_Excel(t *testing.T) {
	for _, format := range []string{FormatExcel, "excel"} {
		data, filename, _, err := testExporter().Export(format, sampleEvents())
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(filename, ".xlsx"))

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		title, err := f.GetCellValue("Events", "B2")
		require.NoError(t, err)
		assert.Equal(t, "Team Sync", title)
		location, err := f.GetCellValue("Events", "D3")
		require.NoError(t, err)
		assert.Equal(t, "Room 4", location)
		require.NoError(t, f.Close())
	}
}

func TestExport_PDF(t *testing.T) {
	data, filename, contentType, err := testExporter().Export(FormatPDF, sampleEvents())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExport_ICS(t *testing.T) {
	events := append(sampleEvents(), event.Event{ID: "bad", Title: "Broken", Start: "someday"})

	data, filename, contentType, err := testExporter().Export(FormatICS, events)
	require.NoError(t, err)
	assert.Equal(t, "events_20240612_150405.ics", filename)
	assert.Contains(t, contentType, "text/calendar")

	body := string(data)
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "SUMMARY:Team Sync")
	assert.Contains(t, body, "UID:a1")
	assert.Contains(t, body, "VALUE=DATE")
	assert.Contains(t, body, "20240610")
	assert.Contains(t, body, "LOCATION:Room 4")
	assert.Contains(t, body, "20240612T090000Z")
	assert.NotContains(t, body, "Broken")
	assert.Equal(t, 2, strings.Count(body, "BEGIN:VEVENT"))
}

func TestExport_UnsupportedFormat(t *testing.T) {
	_, _, _, err := testExporter().Export("docx", sampleEvents())
	assert.Error(t, err)
}

func TestFilterEvents(t *testing.T) {
	events := sampleEvents()

	all, err := FilterEvents(events, ExportRequest{}, fixedNow)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	today, err := FilterEvents(events, ExportRequest{DateRange: DateRangeDaily}, fixedNow)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "b2", today[0].ID)

	custom, err := FilterEvents(events, ExportRequest{
		DateRange: DateRangeCustom,
		StartDate: "2024-06-09",
		EndDate:   "2024-06-10",
	}, fixedNow)
	require.NoError(t, err)
	require.Len(t, custom, 1)
	assert.Equal(t, "a1", custom[0].ID)

	_, err = FilterEvents(events, ExportRequest{DateRange: DateRangeCustom}, fixedNow)
	assert.Error(t, err)

	_, err = FilterEvents(events, ExportRequest{DateRange: "fortnightly"}, fixedNow)
	assert.Error(t, err)
}

func TestFilterEvents_BoundsIgnoreServerZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 02:00 on the 13th in IST is still the 12th in UTC
	now := time.Date(2024, 6, 13, 2, 0, 0, 0, ist)
	events := []event.Event{
		{ID: "late", Title: "Late call", Start: "2024-06-12T23:00:00", End: "2024-06-12T23:30:00"},
		{ID: "next", Title: "Breakfast", Start: "2024-06-13T08:00:00"},
	}

	custom, err := FilterEvents(events, ExportRequest{
		DateRange: DateRangeCustom,
		StartDate: "2024-06-12",
		EndDate:   "2024-06-12",
	}, now)
	require.NoError(t, err)
	require.Len(t, custom, 1)
	assert.Equal(t, "late", custom[0].ID)

	today, err := FilterEvents(events, ExportRequest{DateRange: DateRangeDaily}, now)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "late", today[0].ID)

	start, end, err := GetDateRange(now, DateRangeDaily, "", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 6, 12, 23, 59, 59, 0, time.UTC), end)
}

func TestGetDateRange_Weekly(t *testing.T) {
	start, end, err := GetDateRange(fixedNow, DateRangeWeekly, "", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 6, 12, 23, 59, 59, 0, time.UTC), end)
}
