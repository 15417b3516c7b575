// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import "time"

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	Link         LinkServiceConfig
	Room         RoomServiceConfig
	Flow         FlowConfig
	ErrorHistory ErrorHistoryConfig
	Invitation   InvitationConfig
}

// LinkServiceConfig link issuing and validation settings
// LinkServiceConfig 链接签发与校验配置
type LinkServiceConfig struct {
	BaseURL         string        // Public site prefix of the interview page // 面试页面地址前缀
	Expiry          time.Duration // Link lifetime, default 48h // 链接有效期
	PreJoinWindow   int           // Minutes before the interview the room opens, default 15 // 提前进入分钟数
	PostJoinWindow  int           // Minutes after the interview the room stays open, default 60 // 延后进入分钟数
	RegenerateShift time.Duration // Shift applied to past dates on regenerate, default 24h // 重新生成时的日期顺延
	DefaultDuration int           // Interview length when none is given, default 60 // 默认面试时长（分钟）
}

// RoomServiceConfig room credential settings
// RoomServiceConfig 面试房间配置
type RoomServiceConfig struct {
	RoomBaseURL     string        // 房间地址前缀
	TokenTTL        time.Duration // 房间令牌有效期，默认 1h
	EnableRecording bool          // 是否录制
	MaxDuration     int           // 房间最长时长（分钟），默认 60
}

// FlowConfig candidate flow timers
// FlowConfig 候选人流程定时器配置
type FlowConfig struct {
	RetryDelay    time.Duration // 可恢复连接错误的重试延迟，默认 5s
	RedirectDelay time.Duration // 过期/无效时的跳转倒计时，默认 5s
}

// ErrorHistoryConfig bounded error history
// ErrorHistoryConfig 错误历史配置
type ErrorHistoryConfig struct {
	Size         int           // 容量，默认 50
	RecentWindow time.Duration // RecentOfType 默认时间窗口，默认 5m
}

// InvitationConfig invitation mail settings
// InvitationConfig 邀请邮件配置
type InvitationConfig struct {
	CompanyName  string        // 邮件署名公司
	DefaultDelay time.Duration // 未指定面试时间时，距当前的默认间隔，默认 24h
	ReminderLead time.Duration // 提醒邮件提前量，默认 30m
}

// DefaultServiceConfig 返回默认配置
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Link: LinkServiceConfig{
			BaseURL:         "http://localhost:3000",
			Expiry:          48 * time.Hour,
			PreJoinWindow:   15,
			PostJoinWindow:  60,
			RegenerateShift: 24 * time.Hour,
			DefaultDuration: 60,
		},
		Room: RoomServiceConfig{
			RoomBaseURL:     "http://localhost:9000/room",
			TokenTTL:        time.Hour,
			EnableRecording: true,
			MaxDuration:     60,
		},
		Flow: FlowConfig{
			RetryDelay:    5 * time.Second,
			RedirectDelay: 5 * time.Second,
		},
		ErrorHistory: ErrorHistoryConfig{
			Size:         50,
			RecentWindow: 5 * time.Minute,
		},
		Invitation: InvitationConfig{
			CompanyName:  "HR Team",
			DefaultDelay: 24 * time.Hour,
			ReminderLead: 30 * time.Minute,
		},
	}
}
