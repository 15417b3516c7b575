package middleware

import (
	"strings"

	"github.com/haierkeys/interview-link-service/pkg/app"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"golang.org/x/text/language"
)

// response language -> validator translator locale
var supportedLangs = []struct {
	tag   language.Tag
	lang  string
	trans string
}{
	{language.English, "en", "en"},
	{language.SimplifiedChinese, "zh_cn", "zh"},
	{language.Russian, "ru", "ru"},
}

var langMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(supportedLangs))
	for i, l := range supportedLangs {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// NegotiateLang picks the response language from an explicit lang value or an
// Accept-Language header. English is the fallback.
func NegotiateLang(explicit, acceptLanguage string) (lang, trans string) {
	var tags []language.Tag
	if explicit != "" {
		if t, err := language.Parse(strings.ReplaceAll(explicit, "_", "-")); err == nil {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 && acceptLanguage != "" {
		tags, _, _ = language.ParseAcceptLanguage(acceptLanguage)
	}
	if len(tags) == 0 {
		return supportedLangs[0].lang, supportedLangs[0].trans
	}
	_, idx, conf := langMatcher.Match(tags...)
	if conf == language.No {
		idx = 0
	}
	return supportedLangs[idx].lang, supportedLangs[idx].trans
}

// LangWithTranslator 创建带翻译器的语言中间件（支持依赖注入）
// 优先级: ?lang= > lang 请求头 > Accept-Language
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {

	return func(c *gin.Context) {

		var explicit string
		if s, exist := c.GetQuery("lang"); exist {
			explicit = s
		} else if s = c.GetHeader("lang"); len(s) != 0 {
			explicit = s
		}

		lang, locale := NegotiateLang(explicit, c.GetHeader("Accept-Language"))
		c.Set(app.LangKey, lang)

		if uni != nil {
			trans, found := uni.GetTranslator(locale)
			if !found {
				trans, _ = uni.GetTranslator("en")
			}
			c.Set("trans", trans)
		}

		c.Next()
	}
}
