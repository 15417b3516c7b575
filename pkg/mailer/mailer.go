// Package mailer delivers invitation and reminder mails.
// Package mailer 负责投递面试邀请与提醒邮件
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ErrNoRecipient 收件人为空
var ErrNoRecipient = errors.New("mailer: message has no recipient")

// Message 一封待发送的邮件
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Sender sends one message and returns the Message-ID it was sent with.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// SMTPConfig SMTP 连接配置
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender 基于 gomail 的 SMTP 发送器
type SMTPSender struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
	logger *zap.Logger
}

// NewSMTPSender 创建 SMTP 发送器
func NewSMTPSender(cfg SMTPConfig, logger *zap.Logger) *SMTPSender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

// Send 发送邮件；HTML 正文作为 text/plain 的替代部分
func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	if strings.TrimSpace(msg.To) == "" {
		return "", ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := newMessageID(s.cfg.Host)
	m := buildMessage(s.cfg, msg, id)
	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Warn("smtp send failed",
			zap.String("to", msg.To),
			zap.String("host", s.cfg.Host),
			zap.Error(err))
		return "", fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}

	s.logger.Info("mail sent", zap.String("to", msg.To), zap.String("messageId", id))
	return id, nil
}

func buildMessage(cfg SMTPConfig, msg Message, id string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", cfg.From, cfg.FromName)
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", "<"+id+">")
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return m
}

func newMessageID(host string) string {
	if host == "" {
		host = "localhost"
	}
	return uuid.NewString() + "@" + host
}

// LogSender only logs messages. Used when no SMTP host is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender 创建仅记录日志的发送器
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send 记录邮件而不实际发送
func (s *LogSender) Send(ctx context.Context, msg Message) (string, error) {
	if strings.TrimSpace(msg.To) == "" {
		return "", ErrNoRecipient
	}
	id := newMessageID("")
	s.logger.Info("mail delivery skipped, smtp not configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("messageId", id))
	return id, nil
}

// NewSender returns an SMTP sender when cfg.Host is set, a LogSender otherwise.
func NewSender(cfg SMTPConfig, logger *zap.Logger) Sender {
	if cfg.Host == "" {
		return NewLogSender(logger)
	}
	return NewSMTPSender(cfg, logger)
}
