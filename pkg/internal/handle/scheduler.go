package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lostyway/cloud-file-storage/pkg/middleware"
)

// SchedulerJobs 返回所有后台任务（发件箱派发、清理器）的运行信息.
func SchedulerJobs(c *gin.Context) {
	sched := middleware.GetScheduler(c)
	if sched == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler not initialized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": sched.GetJobInfos()})
}
