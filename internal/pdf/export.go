package pdf

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"taskly/internal/models"
)

// Generator renders printable exports. Interface so handlers can be
// tested without producing real PDFs.
type Generator interface {
	ExportTaskList(w io.Writer, list *models.TaskList, tasks []models.Task) error
}

type taskListExporter struct {
	fontName string
}

func NewGenerator() Generator {
	return &taskListExporter{fontName: "Helvetica"}
}

func (g *taskListExporter) ExportTaskList(w io.Writer, list *models.TaskList, tasks []models.Task) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(list.Name, false)
	doc.SetMargins(15, 15, 15)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	doc.SetFont(g.fontName, "B", 18)
	doc.CellFormat(0, 10, list.Name, "", 1, "L", false, 0, "")

	doc.SetFont(g.fontName, "", 11)
	doc.CellFormat(0, 7, fmt.Sprintf("%d tasks", len(tasks)), "", 1, "L", false, 0, "")
	doc.Ln(3)

	g.headerRow(doc)
	doc.SetFont(g.fontName, "", 10)
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		doc.CellFormat(85, 8, t.Title, "1", 0, "L", false, 0, "")
		doc.CellFormat(30, 8, string(t.Status), "1", 0, "C", false, 0, "")
		doc.CellFormat(30, 8, string(t.Priority), "1", 0, "C", false, 0, "")
		doc.CellFormat(35, 8, due, "1", 1, "C", false, 0, "")
	}

	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont(g.fontName, "", 9)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})

	return doc.Output(w)
}

func (g *taskListExporter) headerRow(doc *gofpdf.Fpdf) {
	doc.SetFont(g.fontName, "B", 10)
	doc.CellFormat(85, 8, "Task", "1", 0, "L", false, 0, "")
	doc.CellFormat(30, 8, "Status", "1", 0, "C", false, 0, "")
	doc.CellFormat(30, 8, "Priority", "1", 0, "C", false, 0, "")
	doc.CellFormat(35, 8, "Due", "1", 1, "C", false, 0, "")
}
