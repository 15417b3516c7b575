package app

import (
	"errors"
	"testing"
	"time"
)

func newTestManager(now *time.Time) TokenManager {
	return NewTokenManager(TokenConfig{
		SecretKey:     "link-secret",
		RoomSecretKey: "room-secret",
		Issuer:        "test-issuer",
		Now:           func() time.Time { return *now },
	})
}

func TestTokenManager_InvitationGenerateAndParse(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	tm := newTestManager(&now)

	payload := InvitationPayload{
		SessionID:      "interview-1",
		CandidateEmail: "ann@example.com",
		CandidateName:  "Ann",
		InterviewDate:  now.Add(24 * time.Hour),
		Position:       "Backend Engineer",
	}

	// 1. 生成和解析
	token, err := tm.GenerateInvitation(payload, now, now.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("GenerateInvitation failed: %v", err)
	}

	claims, err := tm.ParseInvitation(token)
	if err != nil {
		t.Fatalf("ParseInvitation failed: %v", err)
	}
	if claims.SessionID != payload.SessionID || claims.CandidateEmail != payload.CandidateEmail {
		t.Errorf("payload mismatch: %+v", claims.InvitationPayload)
	}
	if !claims.InterviewDate.Equal(payload.InterviewDate) {
		t.Errorf("Expected interview date %v, got %v", payload.InterviewDate, claims.InterviewDate)
	}
	if claims.Type != InvitationTokenType {
		t.Errorf("Expected type %q, got %q", InvitationTokenType, claims.Type)
	}

	// 2. 过期 Token 仍返回 claims
	now = now.Add(48*time.Hour + time.Minute)
	claims, err = tm.ParseInvitation(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Expected ErrTokenExpired, got %v", err)
	}
	if claims == nil || claims.SessionID != payload.SessionID {
		t.Errorf("Expected claims alongside expiry error, got %+v", claims)
	}
}

func TestTokenManager_InvitationRejectsForgery(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	tm := newTestManager(&now)
	payload := InvitationPayload{SessionID: "interview-2", CandidateEmail: "bo@example.com"}

	token, err := tm.GenerateInvitation(payload, now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("GenerateInvitation failed: %v", err)
	}

	// 错误的密钥
	other := NewTokenManager(TokenConfig{SecretKey: "other", Issuer: "test-issuer", Now: func() time.Time { return now }})
	forged, _ := other.GenerateInvitation(payload, now, now.Add(time.Hour))
	if _, err := tm.ParseInvitation(forged); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Expected ErrTokenInvalid for wrong key, got %v", err)
	}

	// 篡改后的 Token
	if _, err := tm.ParseInvitation(token + "tampered"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Expected ErrTokenInvalid for tampered token, got %v", err)
	}

	// 房间令牌不能当作邀请令牌使用
	room, _ := NewTokenManager(TokenConfig{SecretKey: "link-secret", RoomSecretKey: "link-secret", Issuer: "test-issuer", Now: func() time.Time { return now }}).
		GenerateRoom("interview-2", "Bo", now.Add(time.Hour))
	if _, err := tm.ParseInvitation(room); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Expected ErrTokenInvalid for room token, got %v", err)
	}

	if _, err := tm.ParseInvitation("not-a-jwt"); err == nil {
		t.Error("Expected error for garbage token, got nil")
	}
}

func TestTokenManager_Room(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	tm := newTestManager(&now)

	token, err := tm.GenerateRoom("interview-3", "Cy", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("GenerateRoom failed: %v", err)
	}
	claims, err := tm.ParseRoom(token)
	if err != nil {
		t.Fatalf("ParseRoom failed: %v", err)
	}
	if claims.SessionID != "interview-3" {
		t.Errorf("Expected session interview-3, got %s", claims.SessionID)
	}

	now = now.Add(2 * time.Hour)
	if _, err := tm.ParseRoom(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}
