package controllers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/MU-MU-00/lingocard/models"
	"github.com/MU-MU-00/lingocard/services"
	"github.com/MU-MU-00/lingocard/ws"
)

// GET /api/user/groups/:id/export?format=json|csv|txt|md|xlsx|doc
func ExportGroup(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	groupUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_id không hợp lệ"})
		return
	}

	format := services.ExportFormat(c.DefaultQuery("format", "json"))
	switch format {
	case services.FormatJSON, services.FormatCSV, services.FormatTXT,
		services.FormatMD, services.FormatXLSX, services.FormatDOC:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Định dạng export không hợp lệ"})
		return
	}

	var group models.Group
	if err := db.First(&group, "id = ?", groupUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy nhóm"})
		return
	}

	var terms []models.Term
	if err := db.Where("group_id = ?", group.ID).
		Order("created_at ASC").
		Find(&terms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách term"})
		return
	}

	data, err := services.ExportGroup(group, terms, format)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo file export"})
		return
	}

	filename := c.Query("filename")
	if filename == "" {
		filename = fmt.Sprintf("%s-%s", slug.Make(group.Name), time.Now().Format("20060102"))
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, filename, format.Ext()))
	c.Data(http.StatusOK, format.ContentType(), data)
}

// POST /api/user/groups/:id/import  (multipart, field "file")
// JSON backup khôi phục cả trạng thái ôn tập; các định dạng khác chỉ
// nhập nội dung, term nhập vào được coi là thẻ mới đến hạn ngay.
func ImportTerms(c *gin.Context) {
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

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu file import"})
		return
	}

	format, err := services.DetectFormat(fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Định dạng file không được hỗ trợ"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không đọc được file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không đọc được file"})
		return
	}

	result, err := services.ParseImport(data, format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File không đúng định dạng"})
		return
	}
	if len(result.Terms) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File không có term nào"})
		return
	}

	now := time.Now()
	imported := 0
	err = db.Transaction(func(tx *gorm.DB) error {
		total := len(result.Terms)
		for i := range result.Terms {
			t := result.Terms[i]
			t.ID = uuid.Nil
			t.GroupID = group.ID
			if !result.Restored {
				t.Status = models.StatusNew
				t.ReviewStage = 0
				t.ConsecutiveFailures = 0
				t.NextReviewDate = now
			}
			if err := tx.Create(&t).Error; err != nil {
				return err
			}
			imported++
			ws.BroadcastImportProgress(group.ID, imported, total)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu term import"})
		return
	}

	ws.NotifyTermsChanged(db, &group.ID)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Import thành công",
		"imported": imported,
		"restored": result.Restored,
	})
}

// POST /api/user/groups/import  (multipart, field "file")
// Khôi phục backup JSON mà không cần chọn nhóm trước: nhóm lấy theo tên
// trong backup (tạo mới nếu chưa có), các định dạng khác rơi vào nhóm
// mặc định.
func ImportBackup(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu file import"})
		return
	}

	format, err := services.DetectFormat(fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Định dạng file không được hỗ trợ"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không đọc được file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không đọc được file"})
		return
	}

	result, err := services.ParseImport(data, format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File không đúng định dạng"})
		return
	}
	if len(result.Terms) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File không có term nào"})
		return
	}

	var group models.Group
	if result.GroupName != "" {
		err = db.Where("LOWER(name) = LOWER(?)", result.GroupName).First(&group).Error
		if err != nil {
			group = models.Group{Name: result.GroupName, Slug: slug.Make(result.GroupName)}
			if err := db.Create(&group).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo nhóm"})
				return
			}
		}
	} else {
		if err := db.Where("is_default = ?", true).First(&group).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không tìm thấy nhóm mặc định"})
			return
		}
	}

	now := time.Now()
	imported := 0
	err = db.Transaction(func(tx *gorm.DB) error {
		total := len(result.Terms)
		for i := range result.Terms {
			t := result.Terms[i]
			t.ID = uuid.Nil
			t.GroupID = group.ID
			if !result.Restored {
				t.Status = models.StatusNew
				t.ReviewStage = 0
				t.ConsecutiveFailures = 0
				t.NextReviewDate = now
			}
			if err := tx.Create(&t).Error; err != nil {
				return err
			}
			imported++
			ws.BroadcastImportProgress(group.ID, imported, total)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu term import"})
		return
	}

	ws.NotifyTermsChanged(db, &group.ID)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Import thành công",
		"imported": imported,
		"restored": result.Restored,
		"group_id": group.ID,
	})
}
