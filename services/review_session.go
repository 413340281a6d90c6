package services

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/MU-MU-00/lingocard/models"
)

const maxAttemptsPerTerm = 3 // sai đủ 3 lần trong 1 phiên -> chốt fail

// ReviewQuestion là câu hỏi đang hiển thị của 1 phiên ôn tập.
type ReviewQuestion struct {
	Position int       `json:"position"` // vị trí trong queue, dùng làm token nộp đáp án
	Total    int       `json:"total"`    // độ dài queue hiện tại (có thể tăng khi requeue)
	TermID   uuid.UUID `json:"term_id"`
	Term     string    `json:"term"`
	Phonetic string    `json:"phonetic"`
	Options  []string  `json:"options"`
}

// ReviewAnswer là phản hồi sau khi chấm 1 đáp án.
type ReviewAnswer struct {
	Correct       bool   `json:"correct"`
	CorrectOption string `json:"correct_option"`
	Requeued      bool   `json:"requeued"` // sai nhưng chưa đủ 3 lần, sẽ gặp lại trong phiên
	Finished      bool   `json:"finished"`
}

// ReviewSession chạy 1 lượt ôn tập tương tác trên pool term đến hạn.
// Term sai được nối lại vào cuối queue tối đa 2 lần (3 lượt tổng cộng);
// trạng thái term trong DB chỉ thay đổi khi phiên kết thúc trọn vẹn.
type ReviewSession struct {
	ID      uuid.UUID
	GroupID *uuid.UUID // nil = ôn tất cả nhóm

	mu         sync.Mutex
	rng        *rand.Rand
	queue      []models.Term
	pos        int
	curOptions []string // phương án của câu đang hiển thị, trộn 1 lần duy nhất
	curFor     int      // pos đã build curOptions; -1 = chưa build
	failCounts map[uuid.UUID]int
	results    []models.ReviewOutcome
	empty      bool
}

// NewReviewSession trộn pool thành queue làm việc và mở phiên.
// rng truyền vào từ caller để phiên test được với seed cố định.
func NewReviewSession(pool []models.Term, groupID *uuid.UUID, rng *rand.Rand) *ReviewSession {
	queue := make([]models.Term, len(pool))
	copy(queue, pool)
	rng.Shuffle(len(queue), func(i, j int) {
		queue[i], queue[j] = queue[j], queue[i]
	})

	return &ReviewSession{
		ID:         uuid.New(),
		GroupID:    groupID,
		rng:        rng,
		queue:      queue,
		curFor:     -1,
		failCounts: make(map[uuid.UUID]int),
		empty:      len(pool) == 0,
	}
}

// Empty báo phiên được mở với pool rỗng: kết thúc ngay, không có outcome.
func (s *ReviewSession) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.empty
}

// Finished báo queue đã chạy hết.
func (s *ReviewSession) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos >= len(s.queue)
}

// Current trả về câu hỏi đang hiển thị. ok=false khi phiên đã kết thúc.
// Gọi lại nhiều lần cho cùng 1 vị trí vẫn trả đúng thứ tự phương án cũ.
func (s *ReviewSession) Current() (ReviewQuestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos >= len(s.queue) {
		return ReviewQuestion{}, false
	}

	term := s.queue[s.pos]
	if s.curFor != s.pos {
		// Đáp án đúng + tối đa 2 phương án nhiễu, trộn thứ tự hiển thị.
		// Thiếu phương án nhiễu thì bộ phương án nhỏ hơn, không độn thêm.
		opts := []string{term.DefinitionVi}
		for i, w := range term.WrongDefinitions {
			if i >= 2 {
				break
			}
			opts = append(opts, w)
		}
		s.rng.Shuffle(len(opts), func(i, j int) {
			opts[i], opts[j] = opts[j], opts[i]
		})
		s.curOptions = opts
		s.curFor = s.pos
	}

	return ReviewQuestion{
		Position: s.pos,
		Total:    len(s.queue),
		TermID:   term.ID,
		Term:     term.Term,
		Phonetic: term.Phonetic,
		Options:  append([]string(nil), s.curOptions...),
	}, true
}

// Answer chấm đáp án cho câu ở vị trí position. Nộp trùng cho 1 lượt đã
// chấm (position không còn là câu hiện tại) bị bỏ qua, ok=false.
func (s *ReviewSession) Answer(position int, option string) (ReviewAnswer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos >= len(s.queue) || position != s.pos {
		return ReviewAnswer{}, false
	}

	term := s.queue[s.pos]
	correct := option == term.DefinitionVi

	if correct {
		s.results = append(s.results, models.ReviewOutcome{TermID: term.ID, Success: true})
	} else {
		s.failCounts[term.ID]++
		if s.failCounts[term.ID] < maxAttemptsPerTerm {
			// Chưa đủ 3 lần sai: gặp lại cuối phiên, chưa chốt kết quả
			s.queue = append(s.queue, term)
		} else {
			s.results = append(s.results, models.ReviewOutcome{TermID: term.ID, Success: false})
		}
	}

	s.pos++
	s.curFor = -1

	ans := ReviewAnswer{
		Correct:       correct,
		CorrectOption: term.DefinitionVi,
		Requeued:      !correct && s.failCounts[term.ID] < maxAttemptsPerTerm,
		Finished:      s.pos >= len(s.queue),
	}
	return ans, true
}

// Results trả về danh sách outcome, chỉ khi phiên đã kết thúc và pool
// không rỗng. Mỗi term xuất hiện đúng 1 lần dù bị hỏi lại nhiều lượt.
func (s *ReviewSession) Results() ([]models.ReviewOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.empty || s.pos < len(s.queue) {
		return nil, false
	}
	out := make([]models.ReviewOutcome, len(s.results))
	copy(out, s.results)
	return out, true
}
