package api_router

import (
	"expvar"
	"sync"
	"sync/atomic"
	"time"

	"github.com/haierkeys/interview-link-service/internal/app"

	"github.com/gin-gonic/gin"
)

var (
	publishOnce sync.Once
	expvarApp   atomic.Pointer[app.App]
)

// PublishAppVars exposes runtime counters of a under the "interview" expvar.
// Publishing again after a config reload swaps the app the variable reads from.
// PublishAppVars 发布运行时统计到 expvar
func PublishAppVars(a *app.App) {
	expvarApp.Store(a)
	publishOnce.Do(func() {
		expvar.Publish("interview", expvar.Func(func() any {
			cur := expvarApp.Load()
			if cur == nil {
				return nil
			}
			return map[string]any{
				"uptimeSeconds":   int64(time.Since(cur.StartTime) / time.Second),
				"workerActive":    cur.WorkerPool().ActiveCount(),
				"workerQueued":    cur.WorkerPool().QueuedCount(),
				"writeQueues":     cur.WriteQueueManager().QueueCount(),
				"errorHistoryLen": len(cur.ErrorService.History()),
			}
		}))
	})
}

// Expvar 导出 expvar 变量 (/debug/vars)
func Expvar(c *gin.Context) {
	expvar.Handler().ServeHTTP(c.Writer, c.Request)
}
