package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MU-MU-00/lingocard/models"
)

type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
	FormatTXT  ExportFormat = "txt"
	FormatMD   ExportFormat = "md"
	FormatXLSX ExportFormat = "xlsx"
	FormatDOC  ExportFormat = "doc" // nội dung giống txt, mở được bằng Word
)

// Cột xuất file cho các định dạng bảng (csv/md/xlsx)
var exportHeader = []string{"Thuật ngữ", "Bản dịch", "Định nghĩa", "Ví dụ"}

// DetectFormat suy ra định dạng từ phần mở rộng tên file.
func DetectFormat(filename string) (ExportFormat, error) {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".json"):
		return FormatJSON, nil
	case strings.HasSuffix(name, ".csv"):
		return FormatCSV, nil
	case strings.HasSuffix(name, ".txt"):
		return FormatTXT, nil
	case strings.HasSuffix(name, ".md"):
		return FormatMD, nil
	case strings.HasSuffix(name, ".xlsx"), strings.HasSuffix(name, ".xls"):
		return FormatXLSX, nil
	case strings.HasSuffix(name, ".doc"), strings.HasSuffix(name, ".docx"):
		return FormatDOC, nil
	}
	return "", fmt.Errorf("định dạng file không hỗ trợ: %s", filename)
}

// ContentType trả về MIME type tương ứng để set header download.
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatTXT:
		return "text/plain; charset=utf-8"
	case FormatMD:
		return "text/markdown; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatDOC:
		return "application/msword"
	}
	return "application/octet-stream"
}

// Ext trả về phần mở rộng file (kèm dấu chấm).
func (f ExportFormat) Ext() string {
	if f == "" {
		return ""
	}
	return "." + string(f)
}

// jsonBackup là cấu trúc backup đầy đủ: nhóm + term kèm trạng thái ôn tập.
type jsonBackup struct {
	Groups []models.Group `json:"groups"`
	Terms  []models.Term  `json:"terms"`
}

// ExportGroup xuất 1 nhóm và các term của nó ra []byte theo định dạng chọn.
func ExportGroup(group models.Group, terms []models.Term, format ExportFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		// Backup đầy đủ, giữ nguyên trạng thái spaced repetition
		data := jsonBackup{Groups: []models.Group{group}, Terms: terms}
		return json.MarshalIndent(data, "", "  ")

	case FormatCSV:
		var buf bytes.Buffer
		buf.WriteString("\uFEFF") // BOM để Excel nhận UTF-8
		w := csv.NewWriter(&buf)
		if err := w.Write(exportHeader); err != nil {
			return nil, err
		}
		for _, t := range terms {
			if err := w.Write([]string{t.Term, t.TermTranslation, t.DefinitionVi, t.Example}); err != nil {
				return nil, err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case FormatTXT, FormatDOC:
		var b strings.Builder
		for i, t := range terms {
			fmt.Fprintf(&b, "%d. %s+%s+%s+%s\n", i+1, t.Term, t.TermTranslation, t.DefinitionVi, t.Example)
		}
		return []byte(b.String()), nil

	case FormatMD:
		var b strings.Builder
		b.WriteString("| STT | Thuật ngữ | Bản dịch | Định nghĩa | Ví dụ |\n")
		b.WriteString("|-----|-----------|----------|------------|-------|\n")
		for i, t := range terms {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
				i+1, mdCell(t.Term), mdCell(t.TermTranslation), mdCell(t.DefinitionVi), mdCell(t.Example))
		}
		return []byte(b.String()), nil

	case FormatXLSX:
		f := excelize.NewFile()
		defer f.Close()

		sheet := group.Name
		if len([]rune(sheet)) > 31 { // giới hạn tên sheet của Excel
			sheet = string([]rune(sheet)[:31])
		}
		f.SetSheetName("Sheet1", sheet)

		for col, h := range exportHeader {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			f.SetCellValue(sheet, cell, h)
		}
		for row, t := range terms {
			values := []string{t.Term, t.TermTranslation, t.DefinitionVi, t.Example}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		var buf bytes.Buffer
		if err := f.Write(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	return nil, fmt.Errorf("định dạng export không hỗ trợ: %s", format)
}

// ImportResult là kết quả parse file import.
type ImportResult struct {
	Terms     []models.Term // chỉ các trường nội dung, trừ khi Restored
	GroupName string        // chỉ JSON backup mới có tên nhóm
	Restored  bool          // true = JSON backup, giữ nguyên trạng thái ôn tập
}

// ParseImport đọc nội dung file và tách ra danh sách term.
// Các định dạng ngoài JSON chỉ khôi phục được 4 cột nội dung.
func ParseImport(data []byte, format ExportFormat) (*ImportResult, error) {
	switch format {
	case FormatJSON:
		var backup jsonBackup
		if err := json.Unmarshal(data, &backup); err != nil {
			return nil, fmt.Errorf("file JSON không hợp lệ: %w", err)
		}
		res := &ImportResult{Terms: backup.Terms, Restored: true}
		if len(backup.Groups) > 0 {
			res.GroupName = backup.Groups[0].Name
		}
		return res, nil

	case FormatCSV:
		content := strings.TrimPrefix(string(data), "\uFEFF")
		r := csv.NewReader(strings.NewReader(content))
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("file CSV không hợp lệ: %w", err)
		}
		res := &ImportResult{}
		for i, row := range rows {
			if i == 0 && len(row) > 0 && row[0] == exportHeader[0] {
				continue // bỏ dòng header
			}
			if t, ok := termFromColumns(row); ok {
				res.Terms = append(res.Terms, t)
			}
		}
		return res, nil

	case FormatTXT, FormatDOC:
		res := &ImportResult{}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			// Dạng "1. term+bản dịch+định nghĩa+ví dụ"
			if dot := strings.Index(line, ". "); dot > 0 && dot < 10 {
				line = line[dot+2:]
			}
			if t, ok := termFromColumns(strings.Split(line, "+")); ok {
				res.Terms = append(res.Terms, t)
			}
		}
		return res, nil

	case FormatMD:
		res := &ImportResult{}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "|") {
				continue
			}
			cells := splitMDRow(line)
			if len(cells) < 5 || cells[0] == "STT" || strings.HasPrefix(cells[0], "---") {
				continue
			}
			// Bỏ cột STT đầu dòng
			if t, ok := termFromColumns(cells[1:]); ok {
				res.Terms = append(res.Terms, t)
			}
		}
		return res, nil

	case FormatXLSX:
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("file Excel không hợp lệ: %w", err)
		}
		defer f.Close()

		sheet := f.GetSheetName(0)
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, err
		}
		res := &ImportResult{}
		for i, row := range rows {
			if i == 0 && len(row) > 0 && row[0] == exportHeader[0] {
				continue
			}
			if t, ok := termFromColumns(row); ok {
				res.Terms = append(res.Terms, t)
			}
		}
		return res, nil
	}

	return nil, fmt.Errorf("định dạng import không hỗ trợ: %s", format)
}

// termFromColumns dựng term từ 4 cột nội dung; thiếu cột thì bỏ trống.
func termFromColumns(cols []string) (models.Term, bool) {
	get := func(i int) string {
		if i < len(cols) {
			return strings.TrimSpace(cols[i])
		}
		return ""
	}
	t := models.Term{
		Term:            get(0),
		TermTranslation: get(1),
		DefinitionVi:    get(2),
		Example:         get(3),
	}
	return t, t.Term != ""
}

func splitMDRow(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// mdCell escape ký tự | để không vỡ bảng markdown
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
