package controllers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/MU-MU-00/lingocard/models"
)

type (
	GroupStat struct {
		GroupID  string `json:"group_id"`
		Name     string `json:"name"`
		Total    int64  `json:"total"`
		Learned  int64  `json:"learned"`
		DueCount int64  `json:"due_count"`
	}

	StagePoint struct {
		Stage int   `json:"stage"`
		Count int64 `json:"count"`
	}
)

// GET /api/user/stats
// Tổng quan tiến độ học: đếm theo status, số term đến hạn, lịch hẹn
// gần nhất, breakdown theo nhóm và histogram theo stage.
func GetStudyStats(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	now := time.Now()

	var total, newCount, learning, learned, due int64
	db.Model(&models.Term{}).Count(&total)
	db.Model(&models.Term{}).Where("status = ?", models.StatusNew).Count(&newCount)
	db.Model(&models.Term{}).Where("status = ?", models.StatusLearning).Count(&learning)
	db.Model(&models.Term{}).Where("status = ?", models.StatusLearned).Count(&learned)
	db.Model(&models.Term{}).Where("next_review_date <= ?", now).Count(&due)

	// Lịch hẹn ôn tập gần nhất trong tương lai (nil nếu mọi thứ đã đến hạn)
	var nextDueRow sql.NullTime
	db.Model(&models.Term{}).
		Where("next_review_date > ?", now).
		Select("MIN(next_review_date)").
		Scan(&nextDueRow)
	var nextDue *time.Time
	if nextDueRow.Valid {
		nextDue = &nextDueRow.Time
	}

	var byGroup []GroupStat
	db.Raw(`
		SELECT g.id AS group_id, g.name,
		       COUNT(t.id) AS total,
		       COALESCE(SUM(CASE WHEN t.status = 'learned' THEN 1 ELSE 0 END), 0) AS learned,
		       COALESCE(SUM(CASE WHEN t.next_review_date <= ? THEN 1 ELSE 0 END), 0) AS due_count
		FROM groups g
		LEFT JOIN terms t ON t.group_id = g.id
		GROUP BY g.id, g.name
		ORDER BY g.created_at
	`, now).Scan(&byGroup)

	var byStage []StagePoint
	db.Raw(`
		SELECT review_stage AS stage, COUNT(*) AS count
		FROM terms
		GROUP BY review_stage
		ORDER BY review_stage
	`).Scan(&byStage)

	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"new":       newCount,
		"learning":  learning,
		"learned":   learned,
		"due":       due,
		"next_due":  nextDue,
		"by_group":  byGroup,
		"by_stage":  byStage,
		"generated": now,
	})
}
