package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// secretKey 是服务器在启动时生成的32字节密钥。
var secretKey []byte

// SessionPayload 是会话令牌中被签名的数据。
// UserID 是经过认证的所有者ID，核心模块无条件信任它。
type SessionPayload struct {
	UserID    string `json:"u"`
	ExpiresAt int64  `json:"e"`
}

// GenerateSecretKey 生成一个密码学安全的32字节随机密钥。
func GenerateSecretKey() {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	secretKey = key
	fmt.Println("HMAC密钥已成功生成。")
}

// SetSecretKey 允许在测试中注入固定密钥。
func SetSecretKey(key []byte) {
	secretKey = key
}

// IssueSessionToken 为一个用户签发会话令牌。
// 令牌格式为 base64(payload) + "." + base64(signature)。
func IssueSessionToken(userID string, ttl time.Duration, now time.Time) (string, error) {
	payload := SessionPayload{
		UserID:    userID,
		ExpiresAt: now.Add(ttl).Unix(),
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", errors.New("无法序列化会话payload")
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	signature := mac.Sum(nil)

	return base64.RawURLEncoding.EncodeToString(payloadBytes) +
		"." + base64.RawURLEncoding.EncodeToString(signature), nil
}

// ParseSessionToken 验证令牌签名和有效期，返回其中的用户ID。
func ParseSessionToken(tokenStr string, now time.Time) (string, error) {
	parts := strings.SplitN(tokenStr, ".", 2)
	if len(parts) != 2 {
		return "", errors.New("令牌格式不正确")
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", errors.New("令牌payload解码失败")
	}
	actualSignature, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", errors.New("令牌签名解码失败")
	}

	// 重新计算预期签名，并使用时间恒定的比较防止时序攻击
	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	expectedSignature := mac.Sum(nil)
	if !hmac.Equal(expectedSignature, actualSignature) {
		return "", errors.New("令牌签名不匹配")
	}

	var payload SessionPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return "", errors.New("令牌payload解析失败")
	}
	if now.Unix() >= payload.ExpiresAt {
		return "", errors.New("令牌已过期")
	}
	return payload.UserID, nil
}
