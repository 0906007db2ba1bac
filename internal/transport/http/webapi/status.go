package webapi

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/process"
)

func (s *Service) handleStatus(c *gin.Context) {
	snapshot := s.session.Snapshot()

	status := gin.H{
		"session":        snapshot,
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"enrolled_users": s.prints.Count(),
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil {
			status["rss_bytes"] = mem.RSS
		}
		if cpu, err := proc.CPUPercent(); err == nil {
			status["cpu_percent"] = cpu
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": status})
}

func (s *Service) handleUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": gin.H{
		"users": s.prints.Usernames(),
	}})
}

func (s *Service) handleEvents(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid limit"})
			return
		}
		limit = parsed
	}

	events, err := s.events.ListRecent(c.Request.Context(), limit)
	if err != nil {
		s.logger.ErrorTag("HTTP", "listing auth events: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "storage failure"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": gin.H{"events": events}})
}
