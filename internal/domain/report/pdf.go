package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"mis/internal/domain/dashboard"
	"mis/internal/sheets"
)

var chartHTTP = &http.Client{Timeout: 10 * time.Second}

const sectionLimit = 5

// WritePDF renders the filtered rows as a sectioned report: department
// scores, top scorers, pending work by person, and lowest scorers. Each
// section may carry a chart from the configured chart service; a failed
// chart fetch degrades to a text note and never aborts the export.
func (s *Service) WritePDF(ctx context.Context, w io.Writer, title string, tasks []sheets.TaskRow) error {
	summary := Summarize(tasks)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Rows: %d   Target: %d   Achievement: %d   Avg work done: %d%%   Pending: %d",
		summary.Rows, summary.TotalTarget, summary.TotalAchievement, summary.AverageWorkDone, summary.TotalPending))
	pdf.Ln(10)

	employees := make([]dashboard.Employee, 0, len(tasks))
	for _, task := range tasks {
		employees = append(employees, dashboard.BuildEmployee(task))
	}

	s.departmentSection(ctx, pdf, tasks)
	s.scorerSection(ctx, pdf, "Top Scorers", dashboard.TopN(employees, func(e dashboard.Employee) int { return e.WeeklyWorkDone }, sectionLimit, true))
	s.pendingSection(pdf, employees)
	s.scorerSection(ctx, pdf, "Lowest Scorers", dashboard.TopN(employees, func(e dashboard.Employee) int { return e.WeeklyWorkDone }, sectionLimit, false))

	return pdf.Output(w)
}

func (s *Service) departmentSection(ctx context.Context, pdf *gofpdf.Fpdf, tasks []sheets.TaskRow) {
	scores := dashboard.AggregateByGroup(tasks,
		func(t sheets.TaskRow) string { return t.Department },
		func(t sheets.TaskRow) int { return t.Target },
		func(t sheets.TaskRow) int { return t.TotalAchievement })
	scores = dashboard.SortByScoreDesc(scores)

	sectionTitle(pdf, "Department Scores")
	labels := make([]string, 0, len(scores))
	values := make([]int, 0, len(scores))

	tableHeader(pdf, []string{"Department", "Achievement", "Target", "Score"}, []float64{70, 40, 40, 30})
	for _, sc := range scores {
		tableRow(pdf, []string{sc.Subject, fmt.Sprintf("%d", sc.AchievementSum), fmt.Sprintf("%d", sc.TargetSum), fmt.Sprintf("%d", sc.Score)}, []float64{70, 40, 40, 30})
		labels = append(labels, sc.Subject)
		values = append(values, sc.Score)
	}
	pdf.Ln(4)
	s.sectionChart(ctx, pdf, "dept-scores", labels, values)
}

func (s *Service) scorerSection(ctx context.Context, pdf *gofpdf.Fpdf, title string, rows []dashboard.Employee) {
	sectionTitle(pdf, title)
	labels := make([]string, 0, len(rows))
	values := make([]int, 0, len(rows))

	tableHeader(pdf, []string{"Name", "Department", "Work Done %", "Score"}, []float64{70, 50, 35, 25})
	for _, e := range rows {
		tableRow(pdf, []string{e.Name, e.Department, fmt.Sprintf("%d", e.WeeklyWorkDone), fmt.Sprintf("%d", e.Score)}, []float64{70, 50, 35, 25})
		labels = append(labels, e.Name)
		values = append(values, e.WeeklyWorkDone)
	}
	pdf.Ln(4)
	s.sectionChart(ctx, pdf, strings.ToLower(strings.ReplaceAll(title, " ", "-")), labels, values)
}

func (s *Service) pendingSection(pdf *gofpdf.Fpdf, employees []dashboard.Employee) {
	pending := dashboard.TopN(employees, func(e dashboard.Employee) int { return e.AllPendingTillDate }, sectionLimit, true)

	sectionTitle(pdf, "Pending Work")
	tableHeader(pdf, []string{"Name", "Department", "Week Pending", "Pending Till Date"}, []float64{70, 50, 30, 30})
	for _, e := range pending {
		if e.AllPendingTillDate == 0 {
			continue
		}
		tableRow(pdf, []string{e.Name, e.Department, fmt.Sprintf("%d", e.WeekPending), fmt.Sprintf("%d", e.AllPendingTillDate)}, []float64{70, 50, 30, 30})
	}
	pdf.Ln(4)
}

func (s *Service) sectionChart(ctx context.Context, pdf *gofpdf.Fpdf, name string, labels []string, values []int) {
	if s.ChartServiceURL == "" || len(labels) == 0 {
		return
	}
	img, err := s.fetchChart(ctx, labels, values)
	if err != nil {
		slog.Warn("report chart fetch failed", "section", name, "error", err)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.Cell(0, 6, "Chart unavailable")
		pdf.Ln(8)
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
	pdf.ImageOptions(name, pdf.GetX(), pdf.GetY(), 120, 0, true, opts, 0, "")
	pdf.Ln(4)
}

func (s *Service) fetchChart(ctx context.Context, labels []string, values []int) ([]byte, error) {
	limit := len(labels)
	if limit > 10 {
		limit = 10
	}
	quoted := make([]string, 0, limit)
	nums := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		quoted = append(quoted, fmt.Sprintf("%q", truncate(labels[i], 12)))
		nums = append(nums, fmt.Sprintf("%d", values[i]))
	}
	chart := fmt.Sprintf(`{"type":"bar","data":{"labels":[%s],"datasets":[{"data":[%s]}]}}`,
		strings.Join(quoted, ","), strings.Join(nums, ","))

	u := fmt.Sprintf("%s?c=%s&format=png", s.ChartServiceURL, url.QueryEscape(chart))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := chartHTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("chart service returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 9, title)
	pdf.Ln(10)
}

func tableHeader(pdf *gofpdf.Fpdf, headers []string, widths []float64) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
}

func tableRow(pdf *gofpdf.Fpdf, cells []string, widths []float64) {
	for i, c := range cells {
		pdf.CellFormat(widths[i], 7, truncate(c, 40), "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "."
}
