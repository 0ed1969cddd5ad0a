package services

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatewarden/gatewarden/internal/logger"
	"github.com/gatewarden/gatewarden/internal/models"
	"github.com/gatewarden/gatewarden/internal/pipeline"
	"github.com/gatewarden/gatewarden/internal/waf"
)

const auditQueueDepth = 1024

// AuditService persists one SecurityLog row per pipeline decision. Writes
// go through a buffered queue serviced by a single writer goroutine so the
// request path never waits on the database; when the queue is full the
// event is dropped and counted in the operational log.
type AuditService struct {
	db     *gorm.DB
	queue  chan pipeline.AuditEvent
	done   chan struct{}
	closed chan struct{}
}

// NewAuditService starts the writer goroutine.
func NewAuditService(db *gorm.DB) *AuditService {
	s := &AuditService{
		db:     db,
		queue:  make(chan pipeline.AuditEvent, auditQueueDepth),
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	go s.run()
	return s
}

// Record enqueues an audit event. Never blocks; a full queue drops the
// event rather than stall a request.
func (s *AuditService) Record(event pipeline.AuditEvent) {
	select {
	case s.queue <- event:
	default:
		logger.WithFields(map[string]interface{}{
			"client_key": event.ClientKey,
			"reason":     event.Reason,
		}).Warn("audit queue full, event dropped")
	}
}

// Close drains the queue and stops the writer.
func (s *AuditService) Close() {
	close(s.done)
	<-s.closed
}

func (s *AuditService) run() {
	defer close(s.closed)
	for {
		select {
		case event := <-s.queue:
			s.write(event)
		case <-s.done:
			for {
				select {
				case event := <-s.queue:
					s.write(event)
				default:
					return
				}
			}
		}
	}
}

func (s *AuditService) write(event pipeline.AuditEvent) {
	details, err := json.Marshal(event.Details)
	if err != nil {
		details = []byte("{}")
	}

	row := models.SecurityLog{
		UUID:          uuid.NewString(),
		ClientIP:      event.ClientKey,
		RequestPath:   event.Path,
		RequestMethod: event.Method,
		Reason:        string(event.Reason),
		Details:       string(details),
		UserAgent:     event.UserAgent,
		Referer:       event.Referer,
		Timestamp:     event.Timestamp,
	}

	if err := s.db.Create(&row).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"client_key": event.ClientKey,
			"error":      err.Error(),
		}).Error("failed to persist security log")
	}
}

// List returns security logs newest first.
func (s *AuditService) List(limit, offset int) ([]models.SecurityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []models.SecurityLog
	err := s.db.Order("timestamp desc").Offset(offset).Limit(limit).Find(&logs).Error
	return logs, err
}

// ListBetween returns logs inside an optional time range, newest first.
func (s *AuditService) ListBetween(start, end *time.Time) ([]models.SecurityLog, error) {
	q := s.db.Order("timestamp desc")
	if start != nil {
		q = q.Where("timestamp >= ?", *start)
	}
	if end != nil {
		q = q.Where("timestamp <= ?", *end)
	}
	var logs []models.SecurityLog
	err := q.Find(&logs).Error
	return logs, err
}

// AttackTypeCount is one row of the top-attack-types breakdown.
type AttackTypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// Stats summarizes traffic for the dashboard.
type Stats struct {
	TotalRequests   int64             `json:"total_requests"`
	BlockedRequests int64             `json:"blocked_requests"`
	RecentAttacks   int64             `json:"recent_attacks"`
	TopAttackTypes  []AttackTypeCount `json:"top_attack_types"`
}

// Stats aggregates request totals, blocks, last-24h attacks and the top
// block reasons.
func (s *AuditService) Stats(now time.Time) (Stats, error) {
	var st Stats
	allowed := string(waf.ReasonAllowed)

	if err := s.db.Model(&models.SecurityLog{}).Count(&st.TotalRequests).Error; err != nil {
		return st, err
	}
	if err := s.db.Model(&models.SecurityLog{}).
		Where("reason <> ?", allowed).
		Count(&st.BlockedRequests).Error; err != nil {
		return st, err
	}
	if err := s.db.Model(&models.SecurityLog{}).
		Where("timestamp >= ? AND reason <> ?", now.Add(-24*time.Hour), allowed).
		Count(&st.RecentAttacks).Error; err != nil {
		return st, err
	}
	if err := s.db.Model(&models.SecurityLog{}).
		Select("reason as type, count(id) as count").
		Where("reason <> ?", allowed).
		Group("reason").
		Order("count desc").
		Limit(5).
		Scan(&st.TopAttackTypes).Error; err != nil {
		return st, err
	}
	return st, nil
}

// PurgeOlderThan deletes logs past the retention horizon and reports how
// many rows went away.
func (s *AuditService) PurgeOlderThan(cutoff time.Time) (int64, error) {
	res := s.db.Where("timestamp < ?", cutoff).Delete(&models.SecurityLog{})
	return res.RowsAffected, res.Error
}
