package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TermStatus string

const (
	StatusNew      TermStatus = "new"      // vừa tạo, chưa ôn lần nào
	StatusLearning TermStatus = "learning" // trả lời sai, đang học lại
	StatusLearned  TermStatus = "learned"  // trả lời đúng ở lần ôn gần nhất
)

type Term struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GroupID uuid.UUID `gorm:"type:uuid;not null;index" json:"group_id"`
	Group   Group     `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	Term            string `gorm:"type:text;not null" json:"term"`
	Phonetic        string `gorm:"size:150" json:"phonetic"`
	TermTranslation string `gorm:"size:255" json:"term_translation"` // thuật ngữ tương ứng tiếng Việt
	DefinitionEn    string `gorm:"type:text" json:"definition_en"`
	DefinitionVi    string `gorm:"type:text" json:"definition_vi"` // đáp án đúng trong quiz
	Example         string `gorm:"type:text" json:"example"`

	// 2 định nghĩa sai nhưng hợp lý, dùng làm phương án nhiễu trong quiz
	WrongDefinitions datatypes.JSONSlice[string] `json:"wrong_definitions"`

	AudioURL string `gorm:"type:text" json:"audio_url"` // URL phát âm đã cache (Supabase)

	// Trạng thái spaced repetition (chỉ scheduler được phép cập nhật)
	Status              TermStatus `gorm:"type:varchar(20);not null;default:'new'" json:"status"`
	NextReviewDate      time.Time  `gorm:"not null;index" json:"next_review_date"`
	ReviewStage         int        `gorm:"not null;default:0" json:"review_stage"` // 0..5
	ConsecutiveFailures int        `gorm:"not null;default:0" json:"consecutive_failures"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsDue kiểm tra term đã đến hạn ôn tập hay chưa.
func (t *Term) IsDue(now time.Time) bool {
	return !t.NextReviewDate.After(now)
}
