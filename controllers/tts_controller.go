package controllers

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MU-MU-00/lingocard/models"
	"github.com/MU-MU-00/lingocard/services"
	"github.com/MU-MU-00/lingocard/utils"
)

type TTSRequest struct {
	Text         string  `json:"text" binding:"required"`
	Voice        string  `json:"voice"`
	SpeakingRate float64 `json:"speaking_rate"`
}

// POST /api/user/tts
// Đọc thử 1 đoạn text bất kỳ, trả audio base64, không lưu gì.
func TextToSpeechHandler(c *gin.Context) {
	var req TTSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu text"})
		return
	}

	audioContent, err := services.SynthesizeText(req.Text, req.Voice, req.SpeakingRate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo audio"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"voice_used":    req.Voice,
		"audio_content": base64.StdEncoding.EncodeToString(audioContent),
	})
}

// POST /api/user/terms/:id/audio
// Tạo audio phát âm cho term và cache lên Supabase. Gọi lại khi đã có
// audio_url thì trả luôn URL cũ, không tổng hợp lại.
func GenerateTermAudio(c *gin.Context) {
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

	if term.AudioURL != "" {
		c.JSON(http.StatusOK, gin.H{
			"audio_url": term.AudioURL,
			"cached":    true,
		})
		return
	}

	// Đọc cả thuật ngữ lẫn câu ví dụ nếu có
	text := term.Term
	if term.Example != "" {
		text = term.Term + ". " + term.Example
	}

	audioContent, err := services.SynthesizeText(text, "", 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo audio"})
		return
	}

	duration, err := services.GetMP3Duration(audioContent)
	if err != nil {
		duration = 0
	}

	filename := fmt.Sprintf("term-%s.mp3", term.ID)
	publicURL, err := utils.UploadAudioToSupabase(audioContent, filename, "audio/mpeg")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể upload audio"})
		return
	}

	if err := db.Model(&term).Update("audio_url", publicURL).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu audio_url"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audio_url": publicURL,
		"duration":  duration,
		"cached":    false,
	})
}
