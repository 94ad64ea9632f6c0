package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/agrilab/agrilab-go/internal/models"
)

func testSample() *models.Sample {
	return &models.Sample{
		ID:            1,
		SessionID:     1,
		Code:          "S-2026-0001",
		FarmerName:    "Ram",
		Village:       "Rampur",
		Crop:          "Wheat",
		PH:            7.2,
		EC:            0.45,
		OrganicCarbon: 0.61,
		Nitrogen:      280,
		Phosphorus:    14.5,
		Potassium:     190,
		Remarks:       "Nitrogen is on the lower side for the intended crop.",
		CollectedAt:   time.Date(2026, 7, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestRenderProducesPDF(t *testing.T) {
	renderer := New("Agrilab Testing Laboratory", "NH-24, Bareilly")
	data, err := renderer.Render(testSample(), models.SampleTypeSoil)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Render() produced an empty document")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with a PDF magic header: %q", data[:8])
	}
}

func TestRenderNilSample(t *testing.T) {
	renderer := New("Lab", "")
	if _, err := renderer.Render(nil, models.SampleTypeSoil); err == nil {
		t.Fatal("expected an error for a nil sample")
	}
}

func TestRenderDistinctSamplesDiffer(t *testing.T) {
	renderer := New("Lab", "")
	first, err := renderer.Render(testSample(), models.SampleTypeSoil)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	other := testSample()
	other.Code = "S-2026-0002"
	other.FarmerName = "Shyam"
	second, err := renderer.Render(other, models.SampleTypeSoil)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	if bytes.Equal(first, second) {
		t.Error("two different samples rendered byte-identical documents")
	}
}

func TestGeneratePreview(t *testing.T) {
	renderer := New("Lab", "")
	data, err := renderer.Render(testSample(), models.SampleTypeSoil)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	uri, err := GeneratePreview(data)
	if err != nil {
		t.Fatalf("GeneratePreview() returned error: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Errorf("preview is not a JPEG data URI: %.40s", uri)
	}
}
