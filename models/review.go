package models

import "github.com/google/uuid"

// ReviewOutcome là kết quả cuối cùng của 1 term trong 1 phiên ôn tập.
// Chỉ tồn tại tạm thời: engine tạo ra, scheduler tiêu thụ, không lưu DB.
type ReviewOutcome struct {
	TermID  uuid.UUID `json:"term_id"`
	Success bool      `json:"success"`
}
