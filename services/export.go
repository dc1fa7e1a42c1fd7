package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"social-search-platform/internal/results"
	"social-search-platform/models"
)

// ExportService renders stored result sets as downloadable files. The
// posts passed in are already filtered and sorted by the caller, so the
// export mirrors exactly what the dashboard shows.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// resultExport is the JSON download shape.
type resultExport struct {
	ExportDate time.Time      `json:"export_date"`
	Username   string         `json:"username"`
	Platform   string         `json:"platform"`
	PostCount  int            `json:"post_count"`
	Posts      []results.Post `json:"posts"`
}

// StreamExport writes the result set to the HTTP response as an attachment
// in the requested format ("json" or "excel").
func (es *ExportService) StreamExport(ctx *gin.Context, set *models.SearchResultSet, posts []results.Post, format string) error {
	filename := fmt.Sprintf("%s_%s_%s", set.Platform, set.Username, time.Now().Format("2006-01-02"))

	switch format {
	case "json":
		data := resultExport{
			ExportDate: time.Now().UTC(),
			Username:   set.Username,
			Platform:   set.Platform,
			PostCount:  len(posts),
			Posts:      posts,
		}

		jsonData, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}

		ctx.Header("Content-Disposition", "attachment; filename="+filename+".json")
		ctx.Header("Content-Length", strconv.Itoa(len(jsonData)))
		ctx.Data(http.StatusOK, "application/json", jsonData)
		return nil

	case "excel":
		buf, err := es.buildWorkbook(set, posts)
		if err != nil {
			return err
		}

		ctx.Header("Content-Disposition", "attachment; filename="+filename+".xlsx")
		ctx.Header("Content-Length", strconv.Itoa(len(buf)))
		ctx.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf)
		return nil

	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func (es *ExportService) buildWorkbook(set *models.SearchResultSet, posts []results.Post) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Posts"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Username", "Caption", "Date", "Views", "Plays", "Likes",
		"Comments", "Shares", "Engagement %", "Duration", "URL",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIdx, post := range posts {
		row := rowIdx + 2

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), post.OwnerUsername)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), post.Caption)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), post.Date)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), post.ViewsCount)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), post.PlaysCount)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), post.LikesCount)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), post.CommentsCount)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), post.SharesCount)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), fmt.Sprintf("%.2f", post.Engagement))
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), post.Duration)
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", row), post.URL)
	}

	for i := range headers {
		col := fmt.Sprintf("%c:%c", 'A'+i, 'A'+i)
		f.SetColWidth(sheetName, col, col, 18)
	}

	summarySheet := "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	totalViews, totalLikes, totalComments := 0, 0, 0
	for _, post := range posts {
		totalViews += post.ViewsCount
		totalLikes += post.LikesCount
		totalComments += post.CommentsCount
	}

	summaryData := [][]interface{}{
		{"Export Date", time.Now().Format("2006-01-02 15:04:05")},
		{"Username", set.Username},
		{"Platform", set.Platform},
		{"Posts", len(posts)},
		{"Total Views", totalViews},
		{"Total Likes", totalLikes},
		{"Total Comments", totalComments},
	}
	for i, row := range summaryData {
		for j, cell := range row {
			cellRef := fmt.Sprintf("%c%d", 'A'+j, i+1)
			f.SetCellValue(summarySheet, cellRef, cell)
		}
	}

	var buf []byte
	w, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	buf = w.Bytes()
	return buf, nil
}
