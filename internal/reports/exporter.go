package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/sharath018/event-calendar-backend/internal/event"
)

const icsProductID = "-//event-calendar//events export//EN"

// EventExporter exports the current event snapshot in different formats.
type EventExporter interface {
	Export(format string, events []event.Event) ([]byte, string, string, error)
}

type eventExporter struct {
	now func() time.Time
}

func NewEventExporter() EventExporter {
	return &eventExporter{now: time.Now}
}

// Export returns the file body, its filename and its content type.
func (e *eventExporter) Export(format string, events []event.Event) ([]byte, string, string, error) {
	timestamp := e.now().Format("20060102_150405")

	switch format {
	case FormatExcel, formatExcelAlias:
		data, err := e.exportEventsExcel(events)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("events_%s.xlsx", timestamp)
		return data, filename, contentTypeExcel, nil

	case FormatCSV, "":
		data, err := e.exportEventsCSV(events)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("events_%s.csv", timestamp)
		return data, filename, contentTypeCSV, nil

	case FormatPDF:
		data, err := e.exportEventsPDF(events)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("events_%s.pdf", timestamp)
		return data, filename, contentTypePDF, nil

	case FormatICS:
		data, err := e.exportEventsICS(events)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("events_%s.ics", timestamp)
		return data, filename, contentTypeICS, nil

	default:
		return nil, "", "", fmt.Errorf("unsupported format for events: %s", format)
	}
}

var eventHeaders = []string{"ID", "Title", "Description", "Location", "Start", "End", "All Day"}

func eventRecord(ev event.Event) []string {
	return []string{
		ev.ID,
		ev.Title,
		ev.Description,
		ev.Location,
		ev.Start,
		ev.End,
		strconv.FormatBool(ev.AllDay),
	}
}

func (e *eventExporter) exportEventsCSV(events []event.Event) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(eventHeaders); err != nil {
		return nil, err
	}

	for _, ev := range events {
		if err := writer.Write(eventRecord(ev)); err != nil {
			return nil, err
		}
	}

	// Important: Flush before getting bytes
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (e *eventExporter) exportEventsExcel(events []event.Event) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Events"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, header := range eventHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, ev := range events {
		row := i + 2
		for col, value := range eventRecord(ev) {
			f.SetCellValue(sheetName, fmt.Sprintf("%c%d", 'A'+col, row), value)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), ev.AllDay)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *eventExporter) exportEventsPDF(events []event.Event) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Events List (%d)", len(events)))
	pdf.Ln(20)

	pdf.SetFont("Arial", "B", 10)
	widths := []float64{60, 70, 45, 40, 40, 20}
	headers := []string{"Title", "Description", "Location", "Start", "End", "All Day"}

	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, ev := range events {
		allDay := "No"
		if ev.AllDay {
			allDay = "Yes"
		}
		pdf.CellFormat(widths[0], 6, tr(ev.Title), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(ev.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(ev.Location), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, ev.Start, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, ev.End, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[5], 6, allDay, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// exportEventsICS writes one VEVENT per event. Events whose start cannot be
// parsed are skipped; all-day events use DATE values.
func (e *eventExporter) exportEventsICS(events []event.Event) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)

	stamp := e.now().UTC()
	for _, ev := range events {
		start, err := ev.StartTime()
		if err != nil {
			continue
		}
		end, err := ev.EndTime()
		if err != nil {
			end = start
		}

		vevent := cal.AddEvent(ev.ID)
		vevent.SetDtStampTime(stamp)
		vevent.SetSummary(ev.Title)
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			vevent.SetLocation(ev.Location)
		}

		if ev.AllDay || event.IsDateOnly(ev.Start) {
			if !end.After(start) {
				end = start.AddDate(0, 0, 1)
			}
			vevent.SetAllDayStartAt(start)
			vevent.SetAllDayEndAt(end)
			continue
		}
		vevent.SetStartAt(start)
		vevent.SetEndAt(end)
	}

	return []byte(cal.Serialize()), nil
}
