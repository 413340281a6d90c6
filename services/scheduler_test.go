package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MU-MU-00/lingocard/models"
)

func newTestTerm(stage int, status models.TermStatus) models.Term {
	return models.Term{
		ID:          uuid.New(),
		Term:        "throughput",
		ReviewStage: stage,
		Status:      status,
	}
}

func TestApplyReviewResult_SuccessIntervals(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	// Interval tính theo stage TRƯỚC khi chuyển bậc
	wantDays := []int{1, 2, 4, 7, 14, 21}
	for stage, days := range wantDays {
		got := ApplyReviewResult(newTestTerm(stage, models.StatusNew), true, now)
		assert.Equal(t, now.Add(time.Duration(days)*24*time.Hour), got.NextReviewDate,
			"stage %d", stage)
		assert.Equal(t, models.StatusLearned, got.Status)
	}
}

func TestApplyReviewResult_StageClamp(t *testing.T) {
	now := time.Now()

	term := newTestTerm(0, models.StatusNew)
	for i := 0; i < 10; i++ {
		term = ApplyReviewResult(term, true, now)
		require.LessOrEqual(t, term.ReviewStage, 5)
		require.GreaterOrEqual(t, term.ReviewStage, 0)
	}
	assert.Equal(t, 5, term.ReviewStage)

	// Stage 5 đúng tiếp: giữ nguyên 5, interval 21 ngày
	got := ApplyReviewResult(newTestTerm(5, models.StatusLearned), true, now)
	assert.Equal(t, 5, got.ReviewStage)
	assert.Equal(t, now.Add(21*24*time.Hour), got.NextReviewDate)
}

func TestApplyReviewResult_Failure(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	for _, stage := range []int{0, 1, 4, 5} {
		got := ApplyReviewResult(newTestTerm(stage, models.StatusLearned), false, now)
		assert.Equal(t, 0, got.ReviewStage, "stage %d", stage)
		assert.Equal(t, models.StatusLearning, got.Status)
		assert.Equal(t, now.Add(12*time.Hour), got.NextReviewDate)
	}
}

func TestApplyReviewResult_OutOfRangeStageFallback(t *testing.T) {
	now := time.Now()
	got := ApplyReviewResult(newTestTerm(9, models.StatusLearned), true, now)
	assert.Equal(t, now.Add(24*time.Hour), got.NextReviewDate)
	assert.Equal(t, 5, got.ReviewStage)
}

func TestApplyReviewResult_StageTwoScenario(t *testing.T) {
	// Term stage 2 trả lời đúng: stage 3, learned, ôn lại sau 4 ngày
	now := time.Date(2025, 6, 1, 20, 30, 0, 0, time.UTC)
	got := ApplyReviewResult(newTestTerm(2, models.StatusLearning), true, now)
	assert.Equal(t, 3, got.ReviewStage)
	assert.Equal(t, models.StatusLearned, got.Status)
	assert.Equal(t, now.Add(4*24*time.Hour), got.NextReviewDate)
}

func TestApplyReviewResults_Batch(t *testing.T) {
	now := time.Now()

	a := newTestTerm(1, models.StatusLearned)
	b := newTestTerm(3, models.StatusLearned)
	c := newTestTerm(2, models.StatusLearned) // không có outcome -> giữ nguyên
	c.NextReviewDate = now.Add(-time.Hour)

	outcomes := []models.ReviewOutcome{
		{TermID: a.ID, Success: true},
		{TermID: b.ID, Success: false},
		{TermID: uuid.New(), Success: true}, // termId lạ -> bỏ qua, không lỗi
	}

	updated := ApplyReviewResults([]models.Term{a, b, c}, outcomes, now)
	require.Len(t, updated, 3)

	assert.Equal(t, 2, updated[0].ReviewStage)
	assert.Equal(t, models.StatusLearned, updated[0].Status)
	assert.False(t, updated[0].IsDue(now))

	assert.Equal(t, 0, updated[1].ReviewStage)
	assert.Equal(t, models.StatusLearning, updated[1].Status)
	assert.False(t, updated[1].IsDue(now))

	// Pass-through: không đổi gì, vẫn đến hạn
	assert.Equal(t, c.ReviewStage, updated[2].ReviewStage)
	assert.Equal(t, c.NextReviewDate, updated[2].NextReviewDate)
	assert.Equal(t, c.Status, updated[2].Status)
	assert.True(t, updated[2].IsDue(now))
}
