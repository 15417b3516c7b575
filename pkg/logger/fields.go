package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldSessionID 面试会话 ID 字段
	FieldSessionID = "sessionId"

	// FieldReason 校验失败原因字段
	FieldReason = "reason"

	// FieldStatus 会话状态字段
	FieldStatus = "status"

	// FieldFrom 状态迁移起点
	FieldFrom = "from"

	// FieldTo 状态迁移终点
	FieldTo = "to"

	// FieldEmail 候选人邮箱字段
	FieldEmail = "email"

	// FieldErrorType 面试错误类型字段
	FieldErrorType = "errorType"

	// FieldTask 后台任务名称字段
	FieldTask = "task"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldUpstream 上游 AI 服务地址
	FieldUpstream = "upstream"
)
