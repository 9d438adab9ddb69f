package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"

	"gorm.io/datatypes"

	"github.com/sharath018/event-calendar-backend/internal/eventstore"
)

type Service interface {
	LogAction(ctx context.Context, requestID, eventID, action string, details map[string]interface{}, ip string, status string, attempts int) error
	RecordOutcome(ctx context.Context, outcome eventstore.Outcome) error
	Watch(ctx context.Context, notifications <-chan eventstore.Notification)
	GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error)
	GetAuditLogByID(ctx context.Context, id uint) (*AuditLog, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// LogAction creates a new audit log entry
func (s *service) LogAction(ctx context.Context, requestID, eventID, action string, details map[string]interface{}, ip string, status string, attempts int) error {
	// Handle nil details
	if details == nil {
		details = make(map[string]interface{})
	}

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	entry := &AuditLog{
		RequestID: requestID,
		EventID:   eventID,
		Action:    action,
		Details:   datatypes.JSON(detailsJSON),
		IPAddress: ip,
		Status:    status,
		Attempts:  attempts,
	}

	return s.repo.Create(ctx, entry)
}

// RecordOutcome stores the final result of an event store write.
func (s *service) RecordOutcome(ctx context.Context, outcome eventstore.Outcome) error {
	status := StatusSuccess
	details := map[string]interface{}{
		"op": string(outcome.Op),
	}
	if outcome.Title != "" {
		details["title"] = outcome.Title
	}
	if outcome.Failed() {
		status = StatusFailure
		details["error"] = outcome.Err.Error()
	}

	return s.LogAction(ctx, outcome.RequestID, outcome.EventID, outcome.Op.Action(), details, outcome.Origin, status, outcome.Attempts)
}

// Watch records every write outcome delivered on notifications until ctx is
// done or the channel closes. Recording failures are logged and skipped.
func (s *service) Watch(ctx context.Context, notifications <-chan eventstore.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				return
			}
			if n.Outcome == nil {
				continue
			}
			if err := s.RecordOutcome(ctx, *n.Outcome); err != nil {
				log.Printf("⚠️ Failed to write audit log for %s: %v", n.Outcome.RequestID, err)
			}
		}
	}
}

// GetAuditLogs retrieves paginated audit logs with filters
func (s *service) GetAuditLogs(ctx context.Context, filter AuditLogFilter) (*PaginatedAuditLogs, error) {
	logs, total, err := s.repo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Calculate pagination info
	totalPages := 0
	if filter.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(filter.Limit)))
	}

	return &PaginatedAuditLogs{
		Data:       logs,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetAuditLogByID retrieves a specific audit log by ID
func (s *service) GetAuditLogByID(ctx context.Context, id uint) (*AuditLog, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("audit log not found: %w", err)
	}
	return entry, nil
}
