package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 默认 Token 签发者
const DefaultTokenIssuer = "interview-link-service"

const (
	// InvitationTokenType marks tokens embedded in interview invitation links
	InvitationTokenType = "interview_invitation"
	// RoomTokenType marks short-lived room access tokens handed out on join
	RoomTokenType = "interview_room"
)

var (
	// ErrTokenExpired the token signature is valid but exp has passed
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid malformed, wrongly signed or wrong-typed token
	ErrTokenInvalid = errors.New("token is invalid")
)

// TokenConfig 定义 Token 管理器的配置
type TokenConfig struct {
	SecretKey     string // 邀请链接签名密钥
	RoomSecretKey string // 房间令牌签名密钥，为空时复用 SecretKey
	Issuer        string // Token 签发者
	// Now 时钟，测试时注入
	Now func() time.Time
}

// TokenManager 定义 Token 管理接口
type TokenManager interface {
	GenerateInvitation(p InvitationPayload, issuedAt, expiresAt time.Time) (string, error)
	ParseInvitation(token string) (*InvitationEntity, error)
	GenerateRoom(sessionID, candidateName string, expiresAt time.Time) (string, error)
	ParseRoom(token string) (*RoomEntity, error)
}

// InvitationPayload 邀请链接携带的候选人与面试信息
type InvitationPayload struct {
	SessionID      string    `json:"sessionId"`
	CandidateEmail string    `json:"candidateEmail"`
	CandidateName  string    `json:"candidateName"`
	InterviewDate  time.Time `json:"interviewDate"`
	Position       string    `json:"position"`
}

// InvitationEntity JWT claims of an invitation link token
type InvitationEntity struct {
	InvitationPayload
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// RoomEntity JWT claims of a room access token
type RoomEntity struct {
	SessionID     string `json:"sessionId"`
	CandidateName string `json:"candidateName"`
	Type          string `json:"type"`
	jwt.RegisteredClaims
}

// tokenManager 实现 TokenManager 接口
type tokenManager struct {
	config TokenConfig
}

// NewTokenManager 创建一个新的 TokenManager 实例
func NewTokenManager(cfg TokenConfig) TokenManager {
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultTokenIssuer
	}
	if cfg.RoomSecretKey == "" {
		cfg.RoomSecretKey = cfg.SecretKey
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &tokenManager{config: cfg}
}

// GenerateInvitation 签发邀请链接 Token
func (t *tokenManager) GenerateInvitation(p InvitationPayload, issuedAt, expiresAt time.Time) (string, error) {
	claims := &InvitationEntity{
		InvitationPayload: p,
		Type:              InvitationTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    t.config.Issuer,
			Subject:   p.SessionID,
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.config.SecretKey))
}

// ParseInvitation verifies the signature and type of an invitation token.
// An expired but otherwise valid token returns the claims together with ErrTokenExpired.
// ParseInvitation 解析邀请 Token；过期时同时返回 claims 与 ErrTokenExpired
func (t *tokenManager) ParseInvitation(token string) (*InvitationEntity, error) {
	claims := &InvitationEntity{}
	err := t.parse(token, claims, t.config.SecretKey)
	if err != nil && !errors.Is(err, ErrTokenExpired) {
		return nil, err
	}
	if claims.Type != InvitationTokenType || claims.SessionID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, err
}

// GenerateRoom 签发房间令牌
func (t *tokenManager) GenerateRoom(sessionID, candidateName string, expiresAt time.Time) (string, error) {
	now := t.config.Now()
	claims := &RoomEntity{
		SessionID:     sessionID,
		CandidateName: candidateName,
		Type:          RoomTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    t.config.Issuer,
			Subject:   sessionID,
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.config.RoomSecretKey))
}

// ParseRoom 解析房间令牌
func (t *tokenManager) ParseRoom(token string) (*RoomEntity, error) {
	claims := &RoomEntity{}
	if err := t.parse(token, claims, t.config.RoomSecretKey); err != nil {
		return nil, err
	}
	if claims.Type != RoomTokenType {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (t *tokenManager) parse(token string, claims jwt.Claims, key string) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(key), nil
	}, jwt.WithTimeFunc(t.config.Now), jwt.WithIssuer(t.config.Issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}
