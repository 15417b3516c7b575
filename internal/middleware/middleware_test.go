package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/limiter"
	"github.com/haierkeys/interview-link-service/pkg/validator"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	val "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) app.Res {
	t.Helper()
	var res app.Res
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestNegotiateLang(t *testing.T) {
	cases := []struct {
		explicit, accept string
		lang, trans      string
	}{
		{"", "", "en", "en"},
		{"zh_cn", "", "zh_cn", "zh"},
		{"zh-CN", "en", "zh_cn", "zh"},
		{"ru", "", "ru", "ru"},
		{"", "ru-RU,ru;q=0.9,en;q=0.8", "ru", "ru"},
		{"", "fr-FR", "en", "en"},
		{"klingon!!", "ru", "ru", "ru"},
	}
	for _, tc := range cases {
		lang, trans := NegotiateLang(tc.explicit, tc.accept)
		assert.Equal(t, tc.lang, lang, "explicit=%q accept=%q", tc.explicit, tc.accept)
		assert.Equal(t, tc.trans, trans, "explicit=%q accept=%q", tc.explicit, tc.accept)
	}
}

func TestLangWithTranslatorIsPerRequest(t *testing.T) {
	uni, err := validator.NewTranslator(val.New())
	require.NoError(t, err)

	r := gin.New()
	r.Use(LangWithTranslator(uni))
	r.GET("/", func(c *gin.Context) {
		tr, ok := c.MustGet("trans").(ut.Translator)
		require.True(t, ok)
		c.String(http.StatusOK, app.GetLang(c)+"/"+tr.Locale())
	})

	for query, want := range map[string]string{
		"/?lang=ru":    "ru/ru",
		"/?lang=zh_cn": "zh_cn/zh",
		"/":            "en/en",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, query, nil))
		assert.Equal(t, want, w.Body.String(), query)
	}
}

func TestTraceMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddlewareWithConfig(true, ""))
	r.GET("/", func(c *gin.Context) {
		assert.Equal(t, GetTraceIDFromGin(c), GetTraceID(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DefaultTraceIDHeader, "trace-abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, "trace-abc", w.Header().Get(DefaultTraceIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(DefaultTraceIDHeader))
}

func TestAccessLogCarriesTraceID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(TraceMiddlewareWithConfig(true, "X-Request-Id"), AccessLogWithLogger(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping?x=1", nil)
	req.Header.Set("X-Request-Id", "t-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "t-1", fields["traceId"])
	assert.Equal(t, int64(http.StatusNoContent), fields["status"])
}

func TestAdminAuthToken(t *testing.T) {
	r := gin.New()
	r.Use(AdminAuthToken("s3cret"))
	r.GET("/admin", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	cases := []struct {
		header string
		code   int
	}{
		{"", 506},
		{"Bearer wrong", 507},
		{"bearer s3cret", 0},
		{"s3cret", 0},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		r.ServeHTTP(w, req)
		if tc.code == 0 {
			assert.Equal(t, "ok", w.Body.String(), tc.header)
			continue
		}
		assert.Equal(t, tc.code, decode(t, w).Code, tc.header)
	}

	// admin API disabled when no token is configured
	r = gin.New()
	r.Use(AdminAuthToken(""))
	r.GET("/admin", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer ")
	r.ServeHTTP(w, req)
	assert.Equal(t, 506, decode(t, w).Code)
}

func TestRateLimiter(t *testing.T) {
	l := limiter.NewMethodLimiter().AddBuckets(limiter.BucketRule{
		Key: "/api/interviews/validate", FillInterval: time.Hour, Capacity: 1, Quantum: 1,
	})
	r := gin.New()
	r.Use(RateLimiter(l))
	r.GET("/api/interviews/validate/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/interviews/validate/s-1", nil))
	assert.Equal(t, "ok", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/interviews/validate/s-1", nil))
	assert.Equal(t, 429, decode(t, w).Code)
}

func TestRecoveryAndNoFound(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryWithLogger(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.NoRoute(NoFound())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	res := decode(t, w)
	assert.Equal(t, 500, res.Code)
	assert.False(t, res.Status)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, 404, decode(t, w).Code)
}

func TestCorsPreflight(t *testing.T) {
	r := gin.New()
	r.Use(Cors())
	r.POST("/api/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/x", nil)
	req.Header.Set("Origin", "https://candidates.example.com")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://candidates.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestContextTimeout(t *testing.T) {
	r := gin.New()
	r.Use(ContextTimeout(time.Minute))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
