package controllers

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MU-MU-00/lingocard/models"
	"github.com/MU-MU-00/lingocard/services"
	"github.com/MU-MU-00/lingocard/ws"
)

// Phiên ôn tập sống trong RAM, không ghi DB cho tới khi chạy hết queue.
// Server restart thì phiên dở mất — chấp nhận được, mở phiên mới là xong.
var (
	sessionsMu sync.Mutex
	sessions   = make(map[uuid.UUID]*services.ReviewSession)
)

func getSession(id uuid.UUID) (*services.ReviewSession, bool) {
	sessionsMu.Lock()
	defer sessionsMu.Unlock()
	s, ok := sessions[id]
	return s, ok
}

func dropSession(id uuid.UUID) {
	sessionsMu.Lock()
	defer sessionsMu.Unlock()
	delete(sessions, id)
}

func dueTermsQuery(db *gorm.DB, groupID *uuid.UUID) *gorm.DB {
	query := db.Model(&models.Term{}).Where("next_review_date <= ?", time.Now())
	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	}
	return query
}

// GET /api/user/reviews/pool?group_id=
// Xem trước pool đến hạn mà không mở phiên.
func GetReviewPool(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var groupID *uuid.UUID
	if groupIDStr := c.Query("group_id"); groupIDStr != "" {
		parsed, err := uuid.Parse(groupIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "group_id không hợp lệ"})
			return
		}
		groupID = &parsed
	}

	var terms []models.Term
	if err := dueTermsQuery(db, groupID).
		Order("next_review_date ASC").
		Find(&terms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy pool ôn tập"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"terms": terms,
		"total": len(terms),
	})
}

type CreateSessionInput struct {
	GroupID *string `json:"group_id"` // nil = ôn tất cả nhóm
}

// POST /api/user/reviews/sessions
// Pool rỗng: không mở phiên, báo luôn cho client.
func CreateReviewSession(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input CreateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu gửi lên không hợp lệ"})
		return
	}

	var groupID *uuid.UUID
	if input.GroupID != nil && *input.GroupID != "" {
		parsed, err := uuid.Parse(*input.GroupID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "group_id không hợp lệ"})
			return
		}
		var group models.Group
		if err := db.First(&group, "id = ?", parsed).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy nhóm"})
			return
		}
		groupID = &parsed
	}

	var pool []models.Term
	if err := dueTermsQuery(db, groupID).
		Order("next_review_date ASC").
		Find(&pool).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy pool ôn tập"})
		return
	}

	if len(pool) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": "Không có term nào đến hạn",
			"empty":   true,
		})
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	session := services.NewReviewSession(pool, groupID, rng)

	sessionsMu.Lock()
	sessions[session.ID] = session
	sessionsMu.Unlock()

	question, _ := session.Current()
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Mở phiên ôn tập thành công",
		"session_id": session.ID,
		"pool_size":  len(pool),
		"question":   question,
	})
}

// GET /api/user/reviews/sessions/:id
func GetReviewSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id không hợp lệ"})
		return
	}

	session, ok := getSession(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy phiên ôn tập"})
		return
	}

	question, active := session.Current()
	if !active {
		c.JSON(http.StatusOK, gin.H{"session_id": session.ID, "finished": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"finished":   false,
		"question":   question,
	})
}

type AnswerInput struct {
	Position int    `json:"position"`
	Option   string `json:"option" binding:"required"`
}

// POST /api/user/reviews/sessions/:id/answer
// Chạy hết queue thì chốt phiên: áp scheduler lên từng term, ghi DB
// trong 1 transaction, gỡ phiên khỏi RAM và trả summary.
func AnswerReviewSession(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id không hợp lệ"})
		return
	}

	session, ok := getSession(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy phiên ôn tập"})
		return
	}

	var input AnswerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu đáp án"})
		return
	}

	answer, accepted := session.Answer(input.Position, input.Option)
	if !accepted {
		// Nộp trùng hoặc position cũ: bỏ qua, trả lại câu hiện tại
		question, active := session.Current()
		if !active {
			c.JSON(http.StatusConflict, gin.H{"error": "Phiên đã kết thúc"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{
			"error":    "Lượt này đã được chấm",
			"question": question,
		})
		return
	}

	if !answer.Finished {
		question, _ := session.Current()
		c.JSON(http.StatusOK, gin.H{
			"answer":   answer,
			"question": question,
		})
		return
	}

	outcomes, _ := session.Results()
	summary, err := finalizeSession(db, session, outcomes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu kết quả ôn tập"})
		return
	}
	dropSession(session.ID)

	ws.NotifyTermsChanged(db, session.GroupID)

	c.JSON(http.StatusOK, gin.H{
		"answer":  answer,
		"summary": summary,
	})
}

type sessionSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func finalizeSession(db *gorm.DB, session *services.ReviewSession, outcomes []models.ReviewOutcome) (*sessionSummary, error) {
	ids := make([]uuid.UUID, 0, len(outcomes))
	for _, o := range outcomes {
		ids = append(ids, o.TermID)
	}

	var terms []models.Term
	if err := db.Where("id IN ?", ids).Find(&terms).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	updated := services.ApplyReviewResults(terms, outcomes, now)

	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range updated {
			if err := tx.Model(&models.Term{}).
				Where("id = ?", updated[i].ID).
				Updates(map[string]interface{}{
					"status":           updated[i].Status,
					"review_stage":     updated[i].ReviewStage,
					"next_review_date": updated[i].NextReviewDate,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := &sessionSummary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	return summary, nil
}

// DELETE /api/user/reviews/sessions/:id
// Hủy phiên giữa chừng: kết quả dở bị bỏ, DB giữ nguyên.
func AbortReviewSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id không hợp lệ"})
		return
	}

	if _, ok := getSession(sessionID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy phiên ôn tập"})
		return
	}

	dropSession(sessionID)
	c.JSON(http.StatusOK, gin.H{"message": "Đã hủy phiên ôn tập"})
}
