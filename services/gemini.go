package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Hàm gọn để xử lý prompt và trả kết quả từ Gemini
func GeminiGenerateText(prompt string) (string, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, option.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
	if err != nil {
		return "", fmt.Errorf("không thể tạo Gemini client: %v", err)
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash")
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("lỗi Gemini xử lý: %v", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini không trả kết quả hợp lệ")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// GeneratedCard là nội dung thẻ thuật ngữ do Gemini sinh, chưa lưu DB.
type GeneratedCard struct {
	Term             string   `json:"term"`
	Phonetic         string   `json:"phonetic"`
	TermTranslation  string   `json:"term_translation"`
	DefinitionEn     string   `json:"definition_en"`
	DefinitionVi     string   `json:"definition_vi"`
	Example          string   `json:"example"`
	WrongDefinitions []string `json:"wrong_definitions"`
}

// GenerateTermDetails sinh nội dung thẻ cho 1 thuật ngữ công việc.
// Thử lại tối đa 3 lần khi Gemini lỗi; lỗi cuối cùng trả về cho caller
// hiển thị, không tự lưu gì cả.
func GenerateTermDetails(term string) (*GeneratedCard, error) {
	prompt := fmt.Sprintf(`
Bạn là trợ lý giải thích thuật ngữ công việc/kinh doanh cho người Việt học tiếng Anh.
Với thuật ngữ "%s", hãy trả về đúng 1 object JSON hợp lệ, không kèm markdown hay văn bản nào khác:
{
  "term": "thuật ngữ gốc, giữ nguyên như người dùng nhập",
  "phonetic": "phiên âm IPA của thuật ngữ, chỉ phiên âm",
  "term_translation": "thuật ngữ chuyên ngành tương ứng tiếng Việt, chỉ cụm từ, không giải thích",
  "definition_en": "định nghĩa tiếng Anh ngắn gọn, 1-2 câu",
  "definition_vi": "định nghĩa tiếng Việt chi tiết, giải thích đầy đủ khái niệm trong bối cảnh công việc",
  "example": "một câu ví dụ ngắn dùng thuật ngữ",
  "wrong_definitions": ["định nghĩa tiếng Việt sai nhưng nghe hợp lý", "định nghĩa sai thứ hai"]
}

Yêu cầu:
- "wrong_definitions" đúng 2 phần tử, dùng làm phương án nhiễu trắc nghiệm.
- Mọi chuỗi dùng dấu nháy kép, xuống dòng trong nội dung ghi \n.
`, term)

	var rawResp string
	var err error
	for try := 0; try < 3; try++ { // thử lại tối đa 3 lần
		rawResp, err = GeminiGenerateText(prompt)
		if err == nil {
			break
		}
		time.Sleep(time.Duration(try+1) * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("gemini không phản hồi: %w", err)
	}

	// Làm sạch output (loại bỏ markdown fence nếu có)
	clean := strings.TrimSpace(rawResp)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var card GeneratedCard
	if err := json.Unmarshal([]byte(clean), &card); err != nil {
		return nil, fmt.Errorf("không parse được JSON từ Gemini: %w", err)
	}

	if card.Term == "" {
		card.Term = term
	}
	if len(card.WrongDefinitions) > 2 {
		card.WrongDefinitions = card.WrongDefinitions[:2]
	}
	if card.DefinitionVi == "" || len(card.WrongDefinitions) < 2 {
		return nil, fmt.Errorf("nội dung Gemini trả về thiếu trường bắt buộc")
	}

	return &card, nil
}
