package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ru"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	ruTranslations "github.com/go-playground/validator/v10/translations/ru"
	zhTranslations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/pkg/errors"
)

// NewTranslator registers en/zh/ru default messages on v and reports field names by their json tag.
// NewTranslator 注册中英俄三种校验翻译
func NewTranslator(v *validator.Validate) (*ut.UniversalTranslator, error) {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, zh.New(), ru.New())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form", "uri"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	enTrans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(v, enTrans); err != nil {
		return nil, errors.Wrap(err, "register en translations")
	}
	zhTrans, _ := uni.GetTranslator("zh")
	if err := zhTranslations.RegisterDefaultTranslations(v, zhTrans); err != nil {
		return nil, errors.Wrap(err, "register zh translations")
	}
	ruTrans, _ := uni.GetTranslator("ru")
	if err := ruTranslations.RegisterDefaultTranslations(v, ruTrans); err != nil {
		return nil, errors.Wrap(err, "register ru translations")
	}
	return uni, nil
}
