package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/voyagee/travel-backend/internal/models"
	"github.com/voyagee/travel-backend/internal/utils"
)

// RequestMeta describes where a request came from, for audit entries
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// AuditEvent represents a security event to be logged
type AuditEvent struct {
	UserID  *uuid.UUID // nil for pre-authentication events
	Action  string     // register, login_success, login_failed, admin_grant_denied
	Email   string
	Success bool
	Reason  string
	Meta    RequestMeta
}

// AuditService writes structured security events to the log
type AuditService struct {
	logger  *logrus.Logger
	enabled bool
}

// NewAuditService creates a new audit service
func NewAuditService(logger *logrus.Logger, enabled bool) *AuditService {
	return &AuditService{
		logger:  logger,
		enabled: enabled,
	}
}

// LogRegistration records a sign-up attempt
func (s *AuditService) LogRegistration(userID *uuid.UUID, email, userType string, success bool, reason string, meta RequestMeta) {
	s.logEvent(AuditEvent{
		UserID:  userID,
		Action:  "register",
		Email:   email,
		Success: success,
		Reason:  reason,
		Meta:    meta,
	}, logrus.Fields{"user_type": userType})
}

// LogAdminGrantDenied records a sign-up that asked for the admin role
// without an admin requester. requester is nil for anonymous callers.
func (s *AuditService) LogAdminGrantDenied(requester *models.Identity, email string, meta RequestMeta) {
	extra := logrus.Fields{"requested_role": models.RoleAdmin}
	if requester != nil {
		extra["requester_id"] = requester.ID.String()
		extra["requester_role"] = requester.Role
	}
	s.logEvent(AuditEvent{
		Action: "admin_grant_denied",
		Email:  email,
		Reason: "requester is not an admin",
		Meta:   meta,
	}, extra)
}

// LogLogin records a login attempt
func (s *AuditService) LogLogin(userID *uuid.UUID, email string, success bool, reason string, meta RequestMeta) {
	action := "login_failed"
	if success {
		action = "login_success"
	}
	s.logEvent(AuditEvent{
		UserID:  userID,
		Action:  action,
		Email:   email,
		Success: success,
		Reason:  reason,
		Meta:    meta,
	}, nil)
}

func (s *AuditService) logEvent(event AuditEvent, extra logrus.Fields) {
	if s == nil || !s.enabled {
		return
	}

	device := utils.ParseUserAgent(event.Meta.UserAgent)
	fields := logrus.Fields{
		"audit":       true,
		"action":      event.Action,
		"email":       event.Email,
		"success":     event.Success,
		"ip":          event.Meta.IPAddress,
		"device_type": device.DeviceType,
		"os":          device.OS,
		"browser":     device.Browser,
		"is_bot":      device.IsBot,
	}
	if event.UserID != nil {
		fields["user_id"] = event.UserID.String()
	}
	if event.Reason != "" {
		fields["reason"] = event.Reason
	}
	for k, v := range extra {
		fields[k] = v
	}

	entry := s.logger.WithFields(fields)
	if event.Success {
		entry.Info("Security event")
	} else {
		entry.Warn("Security event")
	}
}
