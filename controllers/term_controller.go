package controllers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MU-MU-00/lingocard/models"
	"github.com/MU-MU-00/lingocard/services"
	"github.com/MU-MU-00/lingocard/utils"
	"github.com/MU-MU-00/lingocard/ws"
)

// ======== API SINH THẺ THUẬT NGỮ ========

type GenerateTermInput struct {
	Term string `json:"term" binding:"required"`
}

// POST /api/user/terms/generate
// Sinh nội dung thẻ bằng Gemini, trả về preview — CHƯA lưu DB.
// Lỗi Gemini hiển thị thẳng cho người dùng, không retry thêm ở đây.
func GenerateTermCard(c *gin.Context) {
	var input GenerateTermInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thuật ngữ bắt buộc"})
		return
	}

	term := strings.TrimSpace(input.Term)
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thuật ngữ bắt buộc"})
		return
	}

	card, err := services.GenerateTermDetails(term)
	if err != nil {
		log.Printf("Gemini lỗi khi sinh thẻ %q: %v\n", term, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không sinh được nội dung thẻ, thử lại sau"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sinh thẻ thành công",
		"card":    card,
	})
}

type ExtractTermsInput struct {
	Text string `json:"text" binding:"required"`
}

// POST /api/user/terms/extract
// Dán đoạn văn bản công việc, Gemini lọc ra danh sách thuật ngữ đáng
// học. Người dùng chọn rồi generate thẻ từng thuật ngữ.
func ExtractTerms(c *gin.Context) {
	var input ExtractTermsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu văn bản"})
		return
	}

	terms, err := services.ExtractTermCandidates(input.Text)
	if err != nil {
		log.Printf("Gemini lỗi khi lọc thuật ngữ: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lọc được thuật ngữ, thử lại sau"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"terms": terms,
		"total": len(terms),
	})
}

// ======== CRUD TERM ========

type CreateTermInput struct {
	GroupID          string   `json:"group_id" binding:"required"`
	Term             string   `json:"term" binding:"required"`
	Phonetic         string   `json:"phonetic"`
	TermTranslation  string   `json:"term_translation"`
	DefinitionEn     string   `json:"definition_en"`
	DefinitionVi     string   `json:"definition_vi" binding:"required"`
	Example          string   `json:"example"`
	WrongDefinitions []string `json:"wrong_definitions"`
}

// POST /api/user/terms
// Lưu thẻ đã sinh (người dùng chấp nhận card preview) vào 1 nhóm.
// Thẻ mới luôn đến hạn ngay: status=new, stage=0, next_review_date=now.
func CreateTerm(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input CreateTermInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu gửi lên không hợp lệ"})
		return
	}

	groupUUID, err := uuid.Parse(input.GroupID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_id không hợp lệ"})
		return
	}

	var group models.Group
	if err := db.First(&group, "id = ?", groupUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy nhóm"})
		return
	}

	term := models.Term{
		GroupID:             groupUUID,
		Term:                strings.TrimSpace(input.Term),
		Phonetic:            input.Phonetic,
		TermTranslation:     input.TermTranslation,
		DefinitionEn:        input.DefinitionEn,
		DefinitionVi:        input.DefinitionVi,
		Example:             input.Example,
		WrongDefinitions:    datatypes.JSONSlice[string](input.WrongDefinitions),
		Status:              models.StatusNew,
		NextReviewDate:      time.Now(),
		ReviewStage:         0,
		ConsecutiveFailures: 0,
	}

	if err := db.Create(&term).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu term"})
		return
	}

	ws.NotifyTermsChanged(db, &groupUUID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Lưu term thành công",
		"term":    term,
	})
}

// GET /api/user/terms?group_id=&status=&search=
func GetTerms(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	query := db.Model(&models.Term{})

	if groupIDStr := c.Query("group_id"); groupIDStr != "" {
		groupUUID, err := uuid.Parse(groupIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "group_id không hợp lệ"})
			return
		}
		query = query.Where("group_id = ?", groupUUID)
	}

	if status := c.Query("status"); status != "" {
		switch models.TermStatus(status) {
		case models.StatusNew, models.StatusLearning, models.StatusLearned:
			query = query.Where("status = ?", status)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "status không hợp lệ"})
			return
		}
	}

	// Tìm kiếm theo thuật ngữ hoặc bản dịch
	if search := c.Query("search"); search != "" {
		query = query.Where("(term ILIKE ? OR term_translation ILIKE ?)", "%"+search+"%", "%"+search+"%")
	}

	var terms []models.Term
	if err := query.Order("created_at DESC").Find(&terms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách term"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"terms": terms,
		"total": len(terms),
	})
}

// GET /api/user/terms/:id
func GetTermDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	termUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "term_id không hợp lệ"})
		return
	}

	var term models.Term
	if err := db.First(&term, "id = ?", termUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy term"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"term": term})
}

type UpdateTermInput struct {
	Term             *string   `json:"term"`
	Phonetic         *string   `json:"phonetic"`
	TermTranslation  *string   `json:"term_translation"`
	DefinitionEn     *string   `json:"definition_en"`
	DefinitionVi     *string   `json:"definition_vi"`
	Example          *string   `json:"example"`
	WrongDefinitions *[]string `json:"wrong_definitions"`
	GroupID          *string   `json:"group_id"`
}

// PUT /api/user/terms/:id
// Chỉ sửa được các trường nội dung; trạng thái ôn tập do scheduler quản.
func UpdateTerm(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	termUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "term_id không hợp lệ"})
		return
	}

	var term models.Term
	if err := db.First(&term, "id = ?", termUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy term"})
		return
	}

	var input UpdateTermInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu gửi lên không hợp lệ"})
		return
	}

	if input.Term != nil {
		term.Term = strings.TrimSpace(*input.Term)
	}
	if input.Phonetic != nil {
		term.Phonetic = *input.Phonetic
	}
	if input.TermTranslation != nil {
		term.TermTranslation = *input.TermTranslation
	}
	if input.DefinitionEn != nil {
		term.DefinitionEn = *input.DefinitionEn
	}
	if input.DefinitionVi != nil {
		term.DefinitionVi = *input.DefinitionVi
	}
	if input.Example != nil {
		term.Example = *input.Example
	}
	if input.WrongDefinitions != nil {
		term.WrongDefinitions = datatypes.JSONSlice[string](*input.WrongDefinitions)
	}
	if input.GroupID != nil {
		groupUUID, err := uuid.Parse(*input.GroupID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "group_id không hợp lệ"})
			return
		}
		var group models.Group
		if err := db.First(&group, "id = ?", groupUUID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy nhóm"})
			return
		}
		term.GroupID = groupUUID
	}

	if err := db.Save(&term).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật term"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cập nhật term thành công",
		"term":    term,
	})
}

// DELETE /api/user/terms/:id
func DeleteTerm(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	termUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "term_id không hợp lệ"})
		return
	}

	var term models.Term
	if err := db.First(&term, "id = ?", termUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy term"})
		return
	}

	if err := db.Delete(&term).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa term"})
		return
	}

	// Dọn audio đã cache trên Supabase, lỗi chỉ log
	if term.AudioURL != "" {
		if err := utils.DeleteFileFromSupabase(term.AudioURL); err != nil {
			log.Printf("Không xóa được audio của term %s: %v\n", term.ID, err)
		}
	}

	ws.NotifyTermsChanged(db, &term.GroupID)

	c.JSON(http.StatusOK, gin.H{"message": "Xóa term thành công"})
}
