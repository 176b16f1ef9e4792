package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	panel "pvhealth-cloud/internal/panel/domain"
)

// ReportMeta carries branding for rendered reports.
type ReportMeta struct {
	Title  string
	Issuer string
}

// BuildProfilePDF renders a degradation profile history report as PDF.
func BuildProfilePDF(p *panel.Panel, meta ReportMeta) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, meta.Title)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Panel: %s", p.ID()))
	pdf.Ln(5)
	if p.ModelNumber() != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Model: %s", p.ModelNumber()))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Issuer: %s", meta.Issuer))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Tests recorded: %d", len(p.Tests())))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, "Nameplate Specifications")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	for _, key := range panel.AllSpecKeys() {
		value, ok := p.Specification(key)
		if !ok {
			continue
		}
		pdf.Cell(0, 6, fmt.Sprintf("%s: %.4g", key, value))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	// Profile history table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Generated", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Degradation (%)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Performance (%)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, profile := range p.Profiles() {
		pdf.CellFormat(60, 6, profile.GeneratedAt.Format(time.RFC3339), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", profile.Degradation*100), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", (1-profile.Degradation)*100), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildProfileXLSX renders a degradation profile history report as XLSX.
func BuildProfileXLSX(p *panel.Panel, meta ReportMeta) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	historySheet := "profiles"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(historySheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", meta.Title)
	_ = f.SetCellValue(summarySheet, "A3", "Panel")
	_ = f.SetCellValue(summarySheet, "B3", p.ID())
	_ = f.SetCellValue(summarySheet, "A4", "Model")
	_ = f.SetCellValue(summarySheet, "B4", p.ModelNumber())
	_ = f.SetCellValue(summarySheet, "A5", "Issuer")
	_ = f.SetCellValue(summarySheet, "B5", meta.Issuer)
	_ = f.SetCellValue(summarySheet, "A6", "Tests recorded")
	_ = f.SetCellValue(summarySheet, "B6", len(p.Tests()))

	row := 8
	for _, key := range panel.AllSpecKeys() {
		value, ok := p.Specification(key)
		if !ok {
			continue
		}
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), string(key))
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), value)
		row++
	}

	_ = f.SetCellValue(historySheet, "A1", "Generated")
	_ = f.SetCellValue(historySheet, "B1", "Degradation (%)")
	_ = f.SetCellValue(historySheet, "C1", "Performance (%)")
	for i, profile := range p.Profiles() {
		row := i + 2
		_ = f.SetCellValue(historySheet, fmt.Sprintf("A%d", row), profile.GeneratedAt.Format(time.RFC3339))
		_ = f.SetCellValue(historySheet, fmt.Sprintf("B%d", row), profile.Degradation*100)
		_ = f.SetCellValue(historySheet, fmt.Sprintf("C%d", row), (1-profile.Degradation)*100)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
