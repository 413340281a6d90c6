package services

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/MU-MU-00/lingocard/models"
)

func quizTerm(name string) models.Term {
	return models.Term{
		ID:           uuid.New(),
		Term:         name,
		DefinitionVi: "đúng: " + name,
		WrongDefinitions: datatypes.JSONSlice[string]{
			"sai 1: " + name,
			"sai 2: " + name,
		},
	}
}

// chạy phiên đến khi kết thúc; failPlan cho biết mỗi term cần trả lời sai
// bao nhiêu lần trước khi trả lời đúng (không có trong map = đúng ngay).
// Trả về số lượt mỗi term được hỏi.
func runSession(t *testing.T, s *ReviewSession, failPlan map[uuid.UUID]int) map[uuid.UUID]int {
	t.Helper()

	seen := make(map[uuid.UUID]int)
	remainingFails := make(map[uuid.UUID]int, len(failPlan))
	for id, n := range failPlan {
		remainingFails[id] = n
	}

	for i := 0; i < 1000; i++ {
		q, ok := s.Current()
		if !ok {
			return seen
		}
		seen[q.TermID]++

		answer := "đúng: " + q.Term
		if remainingFails[q.TermID] > 0 {
			remainingFails[q.TermID]--
			answer = "sai 1: " + q.Term
		}

		_, accepted := s.Answer(q.Position, answer)
		require.True(t, accepted)
	}
	t.Fatal("phiên không kết thúc sau 1000 lượt")
	return nil
}

func TestReviewSession_EmptyPool(t *testing.T) {
	s := NewReviewSession(nil, nil, rand.New(rand.NewSource(1)))

	assert.True(t, s.Empty())
	assert.True(t, s.Finished())

	_, ok := s.Current()
	assert.False(t, ok)

	// Pool rỗng: không phát danh sách outcome
	_, ok = s.Results()
	assert.False(t, ok)
}

func TestReviewSession_AllCorrect(t *testing.T) {
	pool := []models.Term{quizTerm("alpha"), quizTerm("beta"), quizTerm("gamma")}
	s := NewReviewSession(pool, nil, rand.New(rand.NewSource(7)))

	assert.False(t, s.Empty())

	seen := runSession(t, s, nil)

	results, ok := s.Results()
	require.True(t, ok)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.Success)
		assert.Equal(t, 1, seen[r.TermID], "term đúng ngay không được hỏi lại")
	}
}

func TestReviewSession_FailTwiceThenSucceed(t *testing.T) {
	// Scenario: X sai 2 lần rồi đúng, Y đúng ngay
	x := quizTerm("latency")
	y := quizTerm("uptime")
	s := NewReviewSession([]models.Term{x, y}, nil, rand.New(rand.NewSource(42)))

	seen := runSession(t, s, map[uuid.UUID]int{x.ID: 2})

	assert.Equal(t, 3, seen[x.ID], "X phải được hỏi đúng 3 lượt")
	assert.Equal(t, 1, seen[y.ID])

	results, ok := s.Results()
	require.True(t, ok)
	require.Len(t, results, 2)

	byID := make(map[uuid.UUID]bool, len(results))
	for _, r := range results {
		byID[r.TermID] = r.Success
	}
	assert.True(t, byID[x.ID])
	assert.True(t, byID[y.ID])
}

func TestReviewSession_ThreeFailsFinalizesFalse(t *testing.T) {
	// Scenario: 1 term sai 3 lần liên tiếp -> outcome duy nhất {term, false}
	x := quizTerm("backlog")
	s := NewReviewSession([]models.Term{x}, nil, rand.New(rand.NewSource(3)))

	seen := runSession(t, s, map[uuid.UUID]int{x.ID: 5}) // muốn sai mãi, engine phải chặn ở 3

	assert.Equal(t, 3, seen[x.ID], "không được hỏi lượt thứ 4")

	results, ok := s.Results()
	require.True(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, x.ID, results[0].TermID)
	assert.False(t, results[0].Success)
}

func TestReviewSession_ConservationManyTerms(t *testing.T) {
	var pool []models.Term
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		pool = append(pool, quizTerm(name))
	}
	failPlan := map[uuid.UUID]int{
		pool[0].ID: 1,
		pool[2].ID: 2,
		pool[4].ID: 3,
		pool[6].ID: 4,
	}

	s := NewReviewSession(pool, nil, rand.New(rand.NewSource(99)))
	runSession(t, s, failPlan)

	results, ok := s.Results()
	require.True(t, ok)
	require.Len(t, results, len(pool), "mỗi term đúng 1 outcome, không thiếu không trùng")

	unique := make(map[uuid.UUID]bool)
	for _, r := range results {
		assert.False(t, unique[r.TermID], "outcome trùng term")
		unique[r.TermID] = true
	}
	for _, term := range pool {
		assert.True(t, unique[term.ID], "thiếu outcome cho %s", term.Term)
	}
}

func TestReviewSession_DuplicateAnswerIgnored(t *testing.T) {
	pool := []models.Term{quizTerm("alpha"), quizTerm("beta")}
	s := NewReviewSession(pool, nil, rand.New(rand.NewSource(5)))

	q, ok := s.Current()
	require.True(t, ok)

	_, accepted := s.Answer(q.Position, "đúng: "+q.Term)
	require.True(t, accepted)

	// Nộp lại cho lượt đã chấm: bỏ qua, không ảnh hưởng câu tiếp theo
	_, accepted = s.Answer(q.Position, "sai 1: "+q.Term)
	assert.False(t, accepted)

	next, ok := s.Current()
	require.True(t, ok)
	assert.NotEqual(t, q.Position, next.Position)
}

func TestReviewSession_OptionsStableAndComplete(t *testing.T) {
	term := quizTerm("alpha")
	s := NewReviewSession([]models.Term{term}, nil, rand.New(rand.NewSource(11)))

	q1, ok := s.Current()
	require.True(t, ok)
	require.Len(t, q1.Options, 3)
	assert.Contains(t, q1.Options, term.DefinitionVi)
	assert.Contains(t, q1.Options, term.WrongDefinitions[0])
	assert.Contains(t, q1.Options, term.WrongDefinitions[1])

	// Đọc lại cùng 1 lượt: thứ tự phương án không đổi
	q2, _ := s.Current()
	assert.Equal(t, q1.Options, q2.Options)
}

func TestReviewSession_FewerDistractors(t *testing.T) {
	term := quizTerm("alpha")
	term.WrongDefinitions = datatypes.JSONSlice[string]{"sai 1: alpha"}

	s := NewReviewSession([]models.Term{term}, nil, rand.New(rand.NewSource(2)))
	q, ok := s.Current()
	require.True(t, ok)
	assert.Len(t, q.Options, 2, "thiếu phương án nhiễu thì không độn thêm")
}

func TestReviewSession_ResultsOnlyWhenFinished(t *testing.T) {
	pool := []models.Term{quizTerm("alpha"), quizTerm("beta")}
	s := NewReviewSession(pool, nil, rand.New(rand.NewSource(8)))

	_, ok := s.Results()
	assert.False(t, ok, "chưa kết thúc thì chưa có outcome")

	runSession(t, s, nil)
	_, ok = s.Results()
	assert.True(t, ok)
}
