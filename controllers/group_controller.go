package controllers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/MU-MU-00/lingocard/models"
	"github.com/MU-MU-00/lingocard/utils"
	"github.com/MU-MU-00/lingocard/ws"
)

type GroupInput struct {
	Name string `json:"name" binding:"required"`
}

// POST /api/user/groups
func CreateGroup(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input GroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên nhóm bắt buộc"})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên nhóm bắt buộc"})
		return
	}

	// Trùng tên không phân biệt hoa thường
	var count int64
	db.Model(&models.Group{}).Where("LOWER(name) = LOWER(?)", name).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Tên nhóm đã tồn tại"})
		return
	}

	group := models.Group{
		Name: name,
		Slug: slug.Make(name),
	}
	if err := db.Create(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo nhóm"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tạo nhóm thành công",
		"group":   group,
	})
}

// GET /api/user/groups
// Kèm số term và số term đến hạn của từng nhóm.
func GetGroups(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var groups []models.Group
	if err := db.Order("created_at ASC").Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách nhóm"})
		return
	}

	type groupWithCounts struct {
		models.Group
		TermCount int64 `json:"term_count"`
		DueCount  int64 `json:"due_count"`
	}

	result := make([]groupWithCounts, 0, len(groups))
	for _, g := range groups {
		var total, due int64
		db.Model(&models.Term{}).Where("group_id = ?", g.ID).Count(&total)
		db.Model(&models.Term{}).Where("group_id = ? AND next_review_date <= NOW()", g.ID).Count(&due)
		result = append(result, groupWithCounts{Group: g, TermCount: total, DueCount: due})
	}

	c.JSON(http.StatusOK, gin.H{"groups": result})
}

// GET /api/user/groups/:id
func GetGroupDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	groupUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_id không hợp lệ"})
		return
	}

	var group models.Group
	if err := db.Preload("Terms").First(&group, "id = ?", groupUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy nhóm"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": group})
}

// PUT /api/user/groups/:id
func UpdateGroup(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	groupUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_id không hợp lệ"})
		return
	}

	var group models.Group
	if err := db.First(&group, "id = ?", groupUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy nhóm"})
		return
	}

	var input GroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên nhóm bắt buộc"})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tên nhóm bắt buộc"})
		return
	}

	var count int64
	db.Model(&models.Group{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, group.ID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Tên nhóm đã tồn tại"})
		return
	}

	group.Name = name
	group.Slug = slug.Make(name)
	if err := db.Save(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật nhóm"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật nhóm thành công",
		"group":   group,
	})
}

// DELETE /api/user/groups/:id
// Nhóm mặc định không xóa được; xóa nhóm kéo theo toàn bộ term bên trong.
func DeleteGroup(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	groupUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_id không hợp lệ"})
		return
	}

	var group models.Group
	if err := db.First(&group, "id = ?", groupUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy nhóm"})
		return
	}

	if group.IsDefault {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không thể xóa nhóm mặc định"})
		return
	}

	// Gom audio URL trước khi xóa để dọn Supabase
	var audioURLs []string
	db.Model(&models.Term{}).
		Where("group_id = ? AND audio_url <> ''", group.ID).
		Pluck("audio_url", &audioURLs)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.Term{}).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa nhóm"})
		return
	}

	go func(urls []string) {
		for _, u := range urls {
			if err := utils.DeleteFileFromSupabase(u); err != nil {
				log.Printf("Không xóa được audio %s: %v\n", u, err)
			}
		}
	}(audioURLs)

	ws.NotifyTermsChanged(db, nil)

	c.JSON(http.StatusOK, gin.H{"message": "Xóa nhóm thành công"})
}
