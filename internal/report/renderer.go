// Package report renders one sample's test results into a finished PDF
// document. Rendering is a pure function of the sample and the lab
// identity; classification remarks are stored values, not computed here.

package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/agrilab/agrilab-go/internal/models"
)

// Renderer produces test report PDFs branded with the lab's identity.
type Renderer struct {
	labName    string
	labAddress string
}

func New(labName, labAddress string) *Renderer {
	return &Renderer{labName: labName, labAddress: labAddress}
}

// analyteRow is one line of the results table.
type analyteRow struct {
	parameter string
	unit      string
	value     float64
}

// Render produces the report for a single sample. sampleType is the
// owning session's test kind (soil, water, fertilizer) and only affects
// the title line. Each call builds a full document; callers stream one
// document at a time for that reason.
func (r *Renderer) Render(sample *models.Sample, sampleType string) ([]byte, error) {
	if sample == nil {
		return nil, fmt.Errorf("cannot render a nil sample")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Test Report %s", sample.Code), true)
	pdf.AddPage()

	// Lab header
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, r.labName, "", 1, "C", false, 0, "")
	if r.labAddress != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, r.labAddress, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, fmt.Sprintf("%s Test Report", titleCase(sampleType)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Sample identity block
	pdf.SetFont("Helvetica", "", 11)
	identity := [][2]string{
		{"Sample Code", sample.Code},
		{"Farmer Name", sample.FarmerName},
		{"Village", sample.Village},
		{"Crop", sample.Crop},
		{"Collected On", sample.CollectedAt.Format("02 Jan 2006")},
		{"Reported On", time.Now().Format("02 Jan 2006")},
	}
	for _, row := range identity {
		pdf.CellFormat(50, 7, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(120, 7, row[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Results table
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(80, 7, "Parameter", "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 7, "Unit", "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 7, "Result", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range analyteRows(sample) {
		pdf.CellFormat(80, 7, row.parameter, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, row.unit, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, fmt.Sprintf("%.2f", row.value), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	if sample.Remarks != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, "Remarks", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, sample.Remarks, "1", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to build PDF for sample %s: %w", sample.Code, err)
	}
	return buf.Bytes(), nil
}

func analyteRows(sample *models.Sample) []analyteRow {
	return []analyteRow{
		{"pH", "-", sample.PH},
		{"Electrical Conductivity", "dS/m", sample.EC},
		{"Organic Carbon", "%", sample.OrganicCarbon},
		{"Available Nitrogen", "kg/ha", sample.Nitrogen},
		{"Available Phosphorus", "kg/ha", sample.Phosphorus},
		{"Available Potassium", "kg/ha", sample.Potassium},
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
