package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"schoolcampus/internal/domain"

	"github.com/phpdave11/gofpdf"
)

// ReportService renders the directory overview PDF from collection
// statistics. Loader is a seam for tests to inject data directly.
type ReportService struct {
	Users         *UserService
	Students      *StudentService
	Teachers      *TeacherService
	Organisations *OrganisationService
	Loader        func(ctx context.Context) (OverviewData, error)
}

type OverviewSection struct {
	Title string
	Stats domain.Stats
}

type OverviewData struct {
	Generated time.Time
	Sections  []OverviewSection
}

// GenerateOverview returns the PDF bytes and a suggested filename.
func (s ReportService) GenerateOverview(ctx context.Context) ([]byte, string, error) {
	data, err := s.loadOverviewData(ctx)
	if err != nil {
		return nil, "", err
	}
	return buildOverviewPDF(data)
}

func (s ReportService) loadOverviewData(ctx context.Context) (OverviewData, error) {
	if s.Loader != nil {
		return s.Loader(ctx)
	}

	data := OverviewData{Generated: time.Now().UTC()}
	sections := []struct {
		title string
		stats func() (domain.Stats, error)
	}{
		{"Organisations", func() (domain.Stats, error) { return s.Organisations.GetStats(ctx, nil) }},
		{"Users", func() (domain.Stats, error) { return s.Users.GetStats(ctx, nil) }},
		{"Teachers", func() (domain.Stats, error) { return s.Teachers.GetStats(ctx, nil) }},
		{"Students", func() (domain.Stats, error) { return s.Students.GetStats(ctx, nil) }},
	}
	for _, section := range sections {
		stats, err := section.stats()
		if err != nil {
			return OverviewData{}, err
		}
		data.Sections = append(data.Sections, OverviewSection{Title: section.title, Stats: stats})
	}
	return data, nil
}

func buildOverviewPDF(data OverviewData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Directory Overview", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "DIRECTORY OVERVIEW")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, "Generated : "+data.Generated.Format("2006-01-02 15:04 MST"))
	pdf.Ln(12)

	for _, section := range data.Sections {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, section.Title)
		pdf.Ln(9)

		pdf.SetFont("Helvetica", "", 11)
		lines := []string{
			fmt.Sprintf("Total            : %d", section.Stats.Total),
			fmt.Sprintf("Active           : %d", section.Stats.Active),
			fmt.Sprintf("Inactive         : %d", section.Stats.Inactive),
			fmt.Sprintf("Created (30d)    : %d", section.Stats.RecentlyCreated),
			fmt.Sprintf("Updated (30d)    : %d", section.Stats.RecentlyUpdated),
		}
		for _, line := range lines {
			pdf.Cell(0, 6, line)
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("OVERVIEW_%s.pdf", data.Generated.Format("20060102"))
	return buf.Bytes(), filename, nil
}
