package code

// 成功码
var (
	Success       = NewSuss(1, lang{en: "Success", zh_cn: "成功", ru: "Успешно"})
	SuccessCreate = NewSuss(2, lang{en: "Created successfully", zh_cn: "创建成功", ru: "Успешно создано"})
	SuccessUpdate = NewSuss(3, lang{en: "Updated successfully", zh_cn: "更新成功", ru: "Успешно обновлено"})
	SuccessDelete = NewSuss(4, lang{en: "Deleted successfully", zh_cn: "删除成功", ru: "Успешно удалено"})
	SuccessSent   = NewSuss(5, lang{en: "Invitations processed", zh_cn: "邀请已处理", ru: "Приглашения обработаны"})
)

// 通用错误码
var (
	Failed                = NewError(0, lang{en: "Failed", zh_cn: "失败", ru: "Ошибка"})
	ErrorServerInternal   = NewError(500, lang{en: "Internal server error", zh_cn: "服务器内部错误", ru: "Внутренняя ошибка сервера"})
	ErrorNotFoundAPI      = NewError(404, lang{en: "API not found", zh_cn: "接口不存在", ru: "Метод не найден"})
	ErrorInvalidParams    = NewError(405, lang{en: "Invalid params", zh_cn: "参数错误", ru: "Неверные параметры"})
	ErrorTooManyRequests  = NewError(429, lang{en: "Too many requests", zh_cn: "请求过多", ru: "Слишком много запросов"})
	ErrorRequestTimeout   = NewError(408, lang{en: "Request timeout", zh_cn: "请求超时", ru: "Превышено время ожидания"})
	ErrorDBQuery          = NewError(501, lang{en: "Database query failed", zh_cn: "数据库查询失败", ru: "Ошибка запроса к базе данных"})
	ErrorNotAdminToken    = NewError(506, lang{en: "Admin token is required", zh_cn: "缺少管理员令牌", ru: "Требуется токен администратора"})
	ErrorInvalidAdminAuth = NewError(507, lang{en: "Invalid admin token", zh_cn: "管理员令牌无效", ru: "Неверный токен администратора"})
	ErrorTokenGenerate    = NewError(508, lang{en: "Token generation failed", zh_cn: "令牌生成失败", ru: "Не удалось создать токен"})
)

// 面试链接错误码
var (
	ErrorLinkMissingToken  = NewError(601, lang{en: "Interview token is missing", zh_cn: "缺少面试令牌", ru: "Отсутствует токен собеседования"})
	ErrorLinkInvalid       = NewError(602, lang{en: "Invalid interview link", zh_cn: "面试链接无效", ru: "Недействительная ссылка на собеседование"})
	ErrorLinkExpired       = NewError(603, lang{en: "Interview link has expired", zh_cn: "面试链接已过期", ru: "Срок действия ссылки истёк"})
	ErrorLinkNotFound      = NewError(604, lang{en: "Interview session not found", zh_cn: "面试会话不存在", ru: "Собеседование не найдено"})
	ErrorLinkAlreadyUsed   = NewError(605, lang{en: "Interview link has already been used", zh_cn: "面试链接已被使用", ru: "Ссылка уже использована"})
	ErrorLinkNotScheduled  = NewError(606, lang{en: "Interview has not started yet", zh_cn: "面试尚未开始", ru: "Собеседование ещё не началось"})
	ErrorLinkGenerate      = NewError(607, lang{en: "Failed to generate interview link", zh_cn: "生成面试链接失败", ru: "Не удалось создать ссылку"})
	ErrorSessionTransition = NewError(608, lang{en: "Session status change not allowed", zh_cn: "会话状态不允许变更", ru: "Недопустимое изменение статуса"})
	ErrorSessionNotActive  = NewError(609, lang{en: "Interview is not in progress", zh_cn: "面试未在进行中", ru: "Собеседование не идёт"})
	ErrorInvitationEmpty   = NewError(610, lang{en: "No candidates provided", zh_cn: "未提供候选人", ru: "Кандидаты не указаны"})
	ErrorIssueReport       = NewError(611, lang{en: "Failed to report issue", zh_cn: "问题上报失败", ru: "Не удалось отправить отчёт"})
	ErrorRelayUnavailable  = NewError(612, lang{en: "AI interviewer is unavailable", zh_cn: "AI 面试官不可用", ru: "ИИ-интервьюер недоступен"})
)
