package code

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithMethodsDoNotMutateRegisteredCode(t *testing.T) {
	c := ErrorLinkExpired.WithDetails("issued 49h ago").WithReason("expired").WithData(map[string]int{"a": 1})

	assert.True(t, c.HaveDetails())
	assert.True(t, c.HaveReason())
	assert.True(t, c.HaveData())
	assert.Equal(t, []string{"issued 49h ago"}, c.Details())
	assert.Equal(t, "expired", c.Reason())

	assert.False(t, ErrorLinkExpired.HaveDetails())
	assert.False(t, ErrorLinkExpired.HaveReason())
	assert.Nil(t, ErrorLinkExpired.Data())
}

func TestIsMatchesClones(t *testing.T) {
	var err error = ErrorLinkNotFound.WithDetails("sess-1")
	wrapped := fmt.Errorf("lookup: %w", err)

	assert.True(t, errors.Is(wrapped, ErrorLinkNotFound))
	assert.False(t, errors.Is(wrapped, ErrorLinkExpired))
	assert.False(t, errors.Is(errors.New("x"), ErrorLinkNotFound))
}

func TestMessagesInAllLanguages(t *testing.T) {
	for _, c := range []*Code{Success, ErrorLinkInvalid, ErrorInvitationEmpty, ErrorRelayUnavailable} {
		for _, l := range GetSupportedLanguages() {
			assert.NotEmpty(t, c.MsgIn(l), "code %d lang %s", c.Code(), l)
		}
	}
	assert.Equal(t, "Interview link has expired", ErrorLinkExpired.MsgIn("unknown"))
	assert.Equal(t, "面试链接已过期", ErrorLinkExpired.MsgIn("zh_cn"))
}

func TestSetGlobalDefaultLang(t *testing.T) {
	t.Cleanup(func() { _ = SetGlobalDefaultLang(FALLBACK_LNG) })

	require.NoError(t, SetGlobalDefaultLang("ru"))
	assert.Equal(t, "Срок действия ссылки истёк", ErrorLinkExpired.Error())

	assert.Error(t, SetGlobalDefaultLang("klingon"))
	assert.Equal(t, FALLBACK_LNG, GetGlobalDefaultLang())
}

func TestDuplicateCodePanics(t *testing.T) {
	assert.Panics(t, func() { NewError(602, lang{en: "dup"}) })
	assert.Panics(t, func() { NewSuss(1, lang{en: "dup"}) })
}

func TestStatus(t *testing.T) {
	assert.True(t, SuccessCreate.Status())
	assert.False(t, Failed.Status())
	assert.Equal(t, 200, ErrorServerInternal.StatusCode())
}

func TestGlobalDefaultLangUnset(t *testing.T) {
	saved := GetGlobalDefaultLang()
	t.Cleanup(func() { _ = SetGlobalDefaultLang(saved) })

	lng = atomic.Value{}
	assert.Equal(t, FALLBACK_LNG, GetGlobalDefaultLang())
	assert.Equal(t, "Interview link has expired", ErrorLinkExpired.Error())
}
