// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/interview-link-service/internal/dao"
	"github.com/haierkeys/interview-link-service/internal/relay"
	"github.com/haierkeys/interview-link-service/internal/service"
	"github.com/haierkeys/interview-link-service/pkg/mailer"
	"github.com/haierkeys/interview-link-service/pkg/util"
	"github.com/haierkeys/interview-link-service/pkg/workerpool"
	"github.com/haierkeys/interview-link-service/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultLinkTokenKey is written into freshly generated config files and replaced on first run
const DefaultLinkTokenKey = "interview-link-Token-Key"

// AppConfig 应用配置
type AppConfig struct {
	File         string             `yaml:"-"` // 配置文件路径，不序列化
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
	Database     DatabaseConfig     `yaml:"database"`
	Security     SecurityConfig     `yaml:"security"`
	Link         LinkConfig         `yaml:"link"`
	Mail         MailConfig         `yaml:"mail"`
	Relay        RelayConfig        `yaml:"relay"`
	Flow         FlowConfig         `yaml:"flow"`
	ErrorHistory ErrorHistoryConfig `yaml:"error-history"`
	Task         TaskConfig         `yaml:"task"`
	App          AppSettings        `yaml:"app"`
	Tracer       TracerConfig       `yaml:"tracer"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	RunMode           string `yaml:"run-mode" default:"release"`
	HttpPort          string `yaml:"http-port" default:":9000"`
	ReadTimeout       int    `yaml:"read-timeout" default:"60"`  // 秒
	WriteTimeout      int    `yaml:"write-timeout" default:"60"` // 秒
	PrivateHttpListen string `yaml:"private-http-listen" default:":9001"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	// LinkTokenKey 邀请链接签名密钥
	LinkTokenKey string `yaml:"link-token-key" default:"interview-link-Token-Key"`
	// RoomTokenKey 房间令牌签名密钥，为空时复用 LinkTokenKey
	RoomTokenKey string `yaml:"room-token-key"`
	// AdminToken HR 管理接口的 Bearer Token，为空时关闭管理接口
	AdminToken string `yaml:"admin-token"`
	// RoomTokenExpiry 房间令牌有效期
	RoomTokenExpiry string `yaml:"room-token-expiry" default:"1h"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type sqlite | mysql | postgres
	Type     string `yaml:"type" default:"sqlite"`
	Path     string `yaml:"path" default:"storage/database/interview.sqlite3"`
	UserName string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl-mode"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	AutoMigrate bool   `yaml:"auto-migrate" default:"true"`
	Charset     string `yaml:"charset"`
	ParseTime   bool   `yaml:"parse-time" default:"true"`
	// MaxIdleConns 最大闲置连接数，默认 10
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数，默认 100
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 支持格式：30m（分钟）、1h（小时）
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// LinkConfig 面试链接配置
type LinkConfig struct {
	// BaseURL 候选人面试页面地址前缀
	BaseURL string `yaml:"base-url" default:"http://localhost:3000"`
	// Expiry 链接有效期，支持 48h / 2d
	Expiry string `yaml:"expiry" default:"48h"`
	// PreJoin 面试开始前可进入的分钟数
	PreJoin int `yaml:"pre-join" default:"15"`
	// PostJoin 面试开始后仍可进入的分钟数
	PostJoin int `yaml:"post-join" default:"60"`
	// RegenerateShift 重新生成时过去的面试时间顺延量
	RegenerateShift string `yaml:"regenerate-shift" default:"24h"`
	// DefaultDuration 默认面试时长（分钟）
	DefaultDuration int `yaml:"default-duration" default:"60"`
	// RoomBaseURL 面试房间地址前缀
	RoomBaseURL     string `yaml:"room-base-url" default:"http://localhost:9000/room"`
	EnableRecording bool   `yaml:"enable-recording" default:"true"`
	// MaxRoomDuration 房间最长时长（分钟）
	MaxRoomDuration int `yaml:"max-room-duration" default:"60"`
}

// MailConfig 邀请邮件配置，Host 为空时只写日志不发送
type MailConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port" default:"587"`
	UserName    string `yaml:"username"`
	Password    string `yaml:"password"`
	From        string `yaml:"from" default:"no-reply@example.com"`
	FromName    string `yaml:"from-name" default:"HR Team"`
	CompanyName string `yaml:"company-name" default:"HR Team"`
	// DefaultDelay 未指定面试时间时距当前的间隔
	DefaultDelay string `yaml:"default-delay" default:"24h"`
}

// RelayConfig AI 面试官音频中继配置
type RelayConfig struct {
	UpstreamURL    string `yaml:"upstream-url" default:"ws://localhost:8000/ws"`
	ReconnectDelay string `yaml:"reconnect-delay" default:"3s"`
	DialTimeout    string `yaml:"dial-timeout" default:"10s"`
}

// FlowConfig 候选人流程定时器配置
type FlowConfig struct {
	RetryDelay    string `yaml:"retry-delay" default:"5s"`
	RedirectDelay string `yaml:"redirect-delay" default:"5s"`
}

// ErrorHistoryConfig 错误历史配置
type ErrorHistoryConfig struct {
	Size         int    `yaml:"size" default:"50"`
	RecentWindow string `yaml:"recent-window" default:"5m"`
}

// TaskConfig 后台任务配置
type TaskConfig struct {
	// SweepInterval 过期会话清理间隔
	SweepInterval string `yaml:"sweep-interval" default:"1m"`
	// ReminderCron 提醒邮件的 cron 表达式
	ReminderCron string `yaml:"reminder-cron" default:"*/10 * * * *"`
	// ReminderLead 提醒邮件提前量
	ReminderLead string `yaml:"reminder-lead" default:"30m"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`

	// Worker Pool 配置（邀请邮件发送）
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"16"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"256"`

	// Write Queue 配置（按会话串行化状态写入）
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"64"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"10s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" default:"5m"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Header  string `yaml:"header" default:"X-Trace-ID"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	c, err := ParseConfig(file)
	if err != nil {
		return nil, realpath, err
	}
	c.File = realpath
	return c, realpath, nil
}

// ParseConfig 解析 YAML 配置并填充默认值
func ParseConfig(data []byte) (*AppConfig, error) {
	c := new(AppConfig)

	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "set default config failed")
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parse config file failed")
	}
	// defaults.Set 只会填充零值字段，YAML 中留空的键在这里补上默认值
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "re-set default config failed")
	}
	return c, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}
	if err := os.WriteFile(c.File, data, 0644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()
	if c.App.WorkerPoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.App.WorkerPoolMaxWorkers
	}
	if c.App.WorkerPoolQueueSize > 0 {
		cfg.QueueSize = c.App.WorkerPoolQueueSize
	}
	return cfg
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()
	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	cfg.WriteTimeout = util.ParseDurationOr(c.App.WriteQueueTimeout, cfg.WriteTimeout)
	cfg.IdleTimeout = util.ParseDurationOr(c.App.WriteQueueIdleTime, cfg.IdleTimeout)
	return cfg
}

// DaoConfig 转换为 dao.DatabaseConfig
func (c *AppConfig) DaoConfig() *dao.DatabaseConfig {
	return &dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		SSLMode:         c.Database.SSLMode,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		RunMode:         c.Server.RunMode,
	}
}

// GetServiceConfig 提取 Service 层需要的配置
func (c *AppConfig) GetServiceConfig() service.ServiceConfig {
	def := service.DefaultServiceConfig()
	return service.ServiceConfig{
		Link: service.LinkServiceConfig{
			BaseURL:         c.Link.BaseURL,
			Expiry:          util.ParseDurationOr(c.Link.Expiry, def.Link.Expiry),
			PreJoinWindow:   c.Link.PreJoin,
			PostJoinWindow:  c.Link.PostJoin,
			RegenerateShift: util.ParseDurationOr(c.Link.RegenerateShift, def.Link.RegenerateShift),
			DefaultDuration: c.Link.DefaultDuration,
		},
		Room: service.RoomServiceConfig{
			RoomBaseURL:     c.Link.RoomBaseURL,
			TokenTTL:        util.ParseDurationOr(c.Security.RoomTokenExpiry, def.Room.TokenTTL),
			EnableRecording: c.Link.EnableRecording,
			MaxDuration:     c.Link.MaxRoomDuration,
		},
		Flow: service.FlowConfig{
			RetryDelay:    util.ParseDurationOr(c.Flow.RetryDelay, def.Flow.RetryDelay),
			RedirectDelay: util.ParseDurationOr(c.Flow.RedirectDelay, def.Flow.RedirectDelay),
		},
		ErrorHistory: service.ErrorHistoryConfig{
			Size:         c.ErrorHistory.Size,
			RecentWindow: util.ParseDurationOr(c.ErrorHistory.RecentWindow, def.ErrorHistory.RecentWindow),
		},
		Invitation: service.InvitationConfig{
			CompanyName:  c.Mail.CompanyName,
			DefaultDelay: util.ParseDurationOr(c.Mail.DefaultDelay, def.Invitation.DefaultDelay),
			ReminderLead: c.GetReminderLead(),
		},
	}
}

// GetRelayConfig 获取音频中继配置
func (c *AppConfig) GetRelayConfig() relay.Config {
	def := relay.DefaultConfig()
	return relay.Config{
		UpstreamURL:    c.Relay.UpstreamURL,
		ReconnectDelay: util.ParseDurationOr(c.Relay.ReconnectDelay, def.ReconnectDelay),
		DialTimeout:    util.ParseDurationOr(c.Relay.DialTimeout, def.DialTimeout),
	}
}

// GetSMTPConfig 获取邮件发送配置
func (c *AppConfig) GetSMTPConfig() mailer.SMTPConfig {
	return mailer.SMTPConfig{
		Host:     c.Mail.Host,
		Port:     c.Mail.Port,
		Username: c.Mail.UserName,
		Password: c.Mail.Password,
		From:     c.Mail.From,
		FromName: c.Mail.FromName,
	}
}

// GetSweepInterval 过期会话清理间隔
func (c *AppConfig) GetSweepInterval() time.Duration {
	return util.ParseDurationOr(c.Task.SweepInterval, time.Minute)
}

// GetReminderLead 提醒邮件提前量
func (c *AppConfig) GetReminderLead() time.Duration {
	return util.ParseDurationOr(c.Task.ReminderLead, 30*time.Minute)
}

// RoomTokenKey returns the room signing key, falling back to the link key
func (c *AppConfig) RoomTokenKey() string {
	if c.Security.RoomTokenKey != "" {
		return c.Security.RoomTokenKey
	}
	return c.Security.LinkTokenKey
}
