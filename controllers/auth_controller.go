package controllers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/MU-MU-00/lingocard/utils"
)

// ====== INPUT STRUCTS ======
type LoginInput struct {
	Password string `json:"password" binding:"required"`
}

// ====== HANDLERS ======

// Đăng nhập chủ sở hữu: app 1 người dùng nên chỉ cần mật khẩu.
// Ưu tiên OWNER_PASSWORD_HASH (bcrypt); OWNER_PASSWORD chỉ dùng khi dev.
func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash := os.Getenv("OWNER_PASSWORD_HASH")
	plain := os.Getenv("OWNER_PASSWORD")

	var ok bool
	switch {
	case hash != "":
		ok = bcrypt.CompareHashAndPassword([]byte(hash), []byte(input.Password)) == nil
	case plain != "":
		ok = input.Password == plain
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Chưa cấu hình mật khẩu chủ sở hữu"})
		return
	}

	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Mật khẩu không đúng"})
		return
	}

	token, err := utils.GenerateToken("owner")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Đăng nhập thành công",
		"token":   token,
	})
}
