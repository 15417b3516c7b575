package app

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	ut "github.com/go-playground/universal-translator"
	val "github.com/go-playground/validator/v10"
)

// ValidError 单个字段的校验错误
type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString joins all messages, used as response details
func (v ValidErrors) ErrorsToString() string {
	return strings.Join(v.Errors(), ", ")
}

// MapsToString returns field -> message, used as response data
func (v ValidErrors) MapsToString() map[string]string {
	out := make(map[string]string, len(v))
	for _, err := range v {
		out[err.Key] = err.Message
	}
	return out
}

// BindAndValid binds uri, query and body parameters into v and validates it.
// Messages are translated with the translator the lang middleware stored under "trans".
// BindAndValid 参数绑定和验证
func BindAndValid(c *gin.Context, v any) (bool, ValidErrors) {
	var errs ValidErrors

	// uri 参数只映射不校验，校验在 body/query 绑定后对完整结构体进行
	if len(c.Params) > 0 {
		m := make(map[string][]string, len(c.Params))
		for _, p := range c.Params {
			m[p.Key] = []string{p.Value}
		}
		if err := binding.MapFormWithTag(v, m, "uri"); err != nil {
			return false, collect(c, err)
		}
	}
	var err error
	if c.Request.Method != http.MethodGet && c.Request.ContentLength == 0 {
		// 空 body 的 POST 只从 query 取参数
		err = c.ShouldBindWith(v, binding.Query)
	} else {
		err = c.ShouldBind(v)
	}
	if err != nil {
		errs = collect(c, err)
		return false, errs
	}
	return true, nil
}

func collect(c *gin.Context, err error) ValidErrors {
	var errs ValidErrors
	verrs, ok := err.(val.ValidationErrors)
	if !ok {
		return append(errs, &ValidError{Key: "body", Message: err.Error()})
	}

	var trans ut.Translator
	if v, exists := c.Get("trans"); exists {
		trans, _ = v.(ut.Translator)
	}
	for _, e := range verrs {
		msg := e.Error()
		if trans != nil {
			msg = e.Translate(trans)
		}
		errs = append(errs, &ValidError{Key: e.Field(), Message: msg})
	}
	return errs
}
