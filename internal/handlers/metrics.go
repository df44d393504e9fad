package handlers

import (
	"time"

	"github.com/azayd/website/backend/internal/models"
	"github.com/azayd/website/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

const metricsNamespace = "azayd"

var startTime = time.Now()

// RegisterMetrics adds runtime, connection pool and content gauges to reg.
func RegisterMetrics(reg prometheus.Registerer, db *gorm.DB, queue services.TaskQueue) {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		gauge("uptime_seconds", "Time since server start in seconds", func() float64 {
			return time.Since(startTime).Seconds()
		}),
		gauge("queue_async_enabled", "Whether the Redis task queue is in use (1=yes, 0=no)", func() float64 {
			if queue != nil && queue.IsAsync() {
				return 1
			}
			return 0
		}),
	)
	if db == nil {
		return
	}

	if sqlDB, err := db.DB(); err == nil {
		reg.MustRegister(collectors.NewDBStatsCollector(sqlDB, "main"))
	}

	count := func(model interface{}, where string, args ...interface{}) func() float64 {
		return func() float64 {
			var n int64
			q := db.Model(model)
			if where != "" {
				q = q.Where(where, args...)
			}
			if err := q.Count(&n).Error; err != nil {
				return -1
			}
			return float64(n)
		}
	}
	reg.MustRegister(
		gauge("services_total", "Number of catalogue services", count(&models.Service{}, "")),
		gauge("team_members_active", "Number of active team members", count(&models.TeamMember{}, "is_active = ?", true)),
		gauge("jobs_open", "Number of open job postings", count(&models.JobPosting{}, "is_active = ?", true)),
		gauge("contact_messages_unread", "Number of unread contact messages", count(&models.ContactMessage{}, "is_read = ?", false)),
		gauge("resumes_unreviewed", "Number of resume submissions not yet reviewed", count(&models.ResumeSubmission{}, "is_reviewed = ?", false)),
		gauge("applications_unreviewed", "Number of job applications not yet reviewed", count(&models.JobApplication{}, "is_reviewed = ?", false)),
		gauge("confirmation_emails_pending", "Number of job applications whose confirmation email is unsent", count(&models.JobApplication{}, "email_sent = ?", false)),
	)
}

func gauge(name, help string, fn func() float64) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{Namespace: metricsNamespace, Name: name, Help: help}, fn)
}

// Metrics serves gatherer in the Prometheus exposition format.
// GET /metrics
func Metrics(gatherer prometheus.Gatherer) gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
