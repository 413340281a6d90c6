package services

import (
	"time"

	"github.com/MU-MU-00/lingocard/models"
)

// Bậc thang interval (ngày) theo review_stage trước khi chuyển bậc.
// Stage 0 đúng lần đầu -> ôn lại sau 1 ngày, stage 5 -> 21 ngày.
var reviewIntervalDays = [6]int{1, 2, 4, 7, 14, 21}

const (
	maxReviewStage   = 5
	failRetryDelay   = 12 * time.Hour
	fallbackInterval = 24 * time.Hour // phòng hờ khi stage nằm ngoài bảng
)

// ApplyReviewResult tính trạng thái ôn tập tiếp theo của 1 term từ kết quả
// quiz. Hàm thuần: không I/O, không random, trả về bản sao đã cập nhật.
// "now" truyền vào từ caller để test được chính xác các mốc thời gian.
func ApplyReviewResult(term models.Term, success bool, now time.Time) models.Term {
	if success {
		interval := fallbackInterval
		if term.ReviewStage >= 0 && term.ReviewStage < len(reviewIntervalDays) {
			// Dùng stage TRƯỚC khi chuyển bậc: đúng lần đầu (0->1) là 1 ngày
			interval = time.Duration(reviewIntervalDays[term.ReviewStage]) * 24 * time.Hour
		}
		next := term.ReviewStage + 1
		if next > maxReviewStage {
			next = maxReviewStage
		}
		term.ReviewStage = next
		term.Status = models.StatusLearned
		term.NextReviewDate = now.Add(interval)
		return term
	}

	// Sai: reset về stage 0, ôn lại sau 12 giờ
	term.ReviewStage = 0
	term.Status = models.StatusLearning
	term.NextReviewDate = now.Add(failRetryDelay)
	return term
}

// ApplyReviewResults áp kết quả phiên ôn tập lên cả danh sách term.
// Term không có trong outcomes giữ nguyên; thứ tự áp không ảnh hưởng
// vì mỗi transition độc lập theo từng term.
func ApplyReviewResults(terms []models.Term, outcomes []models.ReviewOutcome, now time.Time) []models.Term {
	byID := make(map[string]bool, len(outcomes))
	for _, o := range outcomes {
		byID[o.TermID.String()] = o.Success
	}

	updated := make([]models.Term, 0, len(terms))
	for _, t := range terms {
		success, ok := byID[t.ID.String()]
		if !ok {
			updated = append(updated, t)
			continue
		}
		updated = append(updated, ApplyReviewResult(t, success, now))
	}
	return updated
}
