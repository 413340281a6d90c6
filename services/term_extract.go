package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// PreCleanText xử lý thô văn bản dán vào trước khi đưa cho Gemini:
// loại số trang, dòng rác, khoảng trắng thừa.
func PreCleanText(text string) string {
	cleaned := text

	// Xoá các dòng chứa "Trang X" hoặc "Page X"
	rePageNumber := regexp.MustCompile(`(?im)^.*(trang|page)[^\d]*\d+.*$`)
	cleaned = rePageNumber.ReplaceAllString(cleaned, "")

	// Xoá dòng chỉ có số, ký tự đặc biệt hoặc khoảng trắng
	reSpecialLines := regexp.MustCompile(`(?m)^[\s\W\d]*$`)
	cleaned = reSpecialLines.ReplaceAllString(cleaned, "")

	// Xoá nhiều dòng trống liên tiếp
	reMultiNewLine := regexp.MustCompile(`\n{2,}`)
	cleaned = reMultiNewLine.ReplaceAllString(cleaned, "\n")

	return strings.TrimSpace(cleaned)
}

// ExtractTermCandidates nhờ Gemini lọc các thuật ngữ tiếng Anh đáng học
// từ 1 đoạn văn bản (email, tài liệu công việc dán vào). Trả về danh
// sách thuật ngữ thô, người dùng chọn rồi mới generate thẻ từng cái.
func ExtractTermCandidates(text string) ([]string, error) {
	cleaned := PreCleanText(text)
	if cleaned == "" {
		return nil, fmt.Errorf("văn bản rỗng sau khi làm sạch")
	}

	prompt := `Bạn là công cụ lọc thuật ngữ tiếng Anh chuyên ngành từ văn bản công việc.
	Hãy đọc văn bản sau và liệt kê các thuật ngữ tiếng Anh đáng đưa vào bộ thẻ học:
	- Chỉ lấy thuật ngữ chuyên môn hoặc cụm từ công việc, bỏ qua từ thông dụng
	- Mỗi thuật ngữ giữ nguyên dạng xuất hiện trong văn bản, không dịch
	- Không lặp lại thuật ngữ
	- Tối đa 20 thuật ngữ
	- CHỈ trả về JSON array các chuỗi, ví dụ: ["stakeholder", "deliverable"]
	- KHÔNG markdown, KHÔNG giải thích, KHÔNG thêm ký tự thừa
	Văn bản cần lọc:`

	raw, err := GeminiGenerateText(prompt + "\n\n" + cleaned)
	if err != nil {
		return nil, err
	}

	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var terms []string
	if err := json.Unmarshal([]byte(raw), &terms); err != nil {
		return nil, fmt.Errorf("Gemini trả về không đúng JSON: %w", err)
	}

	// Lọc lại phía server phòng Gemini trả chuỗi rỗng hoặc trùng
	seen := make(map[string]bool)
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("không tìm thấy thuật ngữ nào")
	}
	return out, nil
}
