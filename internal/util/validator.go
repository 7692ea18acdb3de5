package util

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidatePassword 验证密码（至少 6 位）
func ValidatePassword(pwd string) error {
	if len(pwd) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if len(pwd) > 72 { // bcrypt 输入上限
		return fmt.Errorf("password too long, max 72 characters")
	}
	return nil
}

// ValidateEmail 验证邮箱格式
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	if len(email) > 255 {
		return fmt.Errorf("email too long, max 255 characters")
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateMessageBody 验证消息内容（文本和图片至少有一个）
func ValidateMessageBody(text, image string) error {
	if strings.TrimSpace(text) == "" && image == "" {
		return fmt.Errorf("message must contain text or image")
	}
	if len(text) > 4096 {
		return fmt.Errorf("text too long, max 4096 characters")
	}
	return nil
}
