// Package audit provides security audit logging for SIEM consumption.
// Free-text fields submitted by students (essays, skill lists) are scanned
// for SQL injection patterns and security-relevant events are logged in
// structured JSON format.
package audit

import (
	"context"
	"encoding/json"
	"time"

	libinjection "github.com/corazawaf/libinjection-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch-engine/pkg/auth"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventSQLInjectionAttempt is logged when libinjection detects SQL injection patterns.
	EventSQLInjectionAttempt SecurityEventType = "sql_injection_attempt"
	// EventFieldValidation is logged when submitted profile fields fail validation.
	EventFieldValidation SecurityEventType = "field_validation_failure"
)

// SecurityEvent represents an auditable security event with all relevant context
// for SIEM ingestion and analysis.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	StudentID uuid.UUID         `json:"student_id,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// InjectionDetails contains specifics of a detected SQL injection attempt.
type InjectionDetails struct {
	FieldName   string `json:"field_name"`
	FieldValue  string `json:"field_value"`
	Fingerprint string `json:"fingerprint"` // libinjection fingerprint for pattern analysis
}

// CheckField uses libinjection to detect SQL injection patterns in a
// free-text field. Returns nil when the value is clean.
func CheckField(fieldName, value string) *InjectionDetails {
	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if !isSQLi {
		return nil
	}
	return &InjectionDetails{
		FieldName:   fieldName,
		FieldValue:  value,
		Fingerprint: string(fingerprint),
	}
}

// CheckFields scans a set of named free-text fields and returns details for
// every field that matched an injection pattern. Empty slice means clean.
func CheckFields(fields map[string]string) []*InjectionDetails {
	var results []*InjectionDetails
	for name, value := range fields {
		if result := CheckField(name, value); result != nil {
			results = append(results, result)
		}
	}
	return results
}

// SecurityAuditor logs security events for SIEM consumption.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a security auditor with a dedicated logger
// namespace so events are easy to filter in SIEM systems.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogInjectionAttempt records a detected SQL injection attempt with full context.
// Logged at ERROR level with "critical" severity for immediate alerting.
// The context is used to extract the user ID from JWT claims if available.
func (a *SecurityAuditor) LogInjectionAttempt(
	ctx context.Context,
	studentID uuid.UUID,
	details InjectionDetails,
	clientIP string,
) {
	userID := userIDFromContext(ctx)

	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventSQLInjectionAttempt,
		StudentID: studentID,
		UserID:    userID,
		ClientIP:  clientIP,
		Details:   details,
		Severity:  "critical",
	}

	// Marshaling known types should never fail
	eventJSON, _ := json.Marshal(event)

	a.logger.Error("SQL injection attempt detected",
		zap.String("event_json", string(eventJSON)),
		zap.String("student_id", studentID.String()),
		zap.String("field_name", details.FieldName),
		zap.String("fingerprint", details.Fingerprint),
		zap.String("client_ip", clientIP),
		zap.String("user_id", userID),
		zap.String("severity", "critical"),
	)
}

// LogFieldValidation records a profile field validation failure.
// Logged at WARN level as these are typically user errors, not attacks.
func (a *SecurityAuditor) LogFieldValidation(
	ctx context.Context,
	studentID uuid.UUID,
	errorMessage string,
	clientIP string,
) {
	userID := userIDFromContext(ctx)

	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventFieldValidation,
		StudentID: studentID,
		UserID:    userID,
		ClientIP:  clientIP,
		Details: map[string]string{
			"error": errorMessage,
		},
		Severity: "warning",
	}

	eventJSON, _ := json.Marshal(event)

	a.logger.Warn("Field validation failed",
		zap.String("event_json", string(eventJSON)),
		zap.String("student_id", studentID.String()),
		zap.String("error", errorMessage),
		zap.String("client_ip", clientIP),
		zap.String("user_id", userID),
		zap.String("severity", "warning"),
	)
}

func userIDFromContext(ctx context.Context) string {
	claims, ok := auth.GetClaims(ctx)
	if !ok {
		return ""
	}
	return claims.Subject
}
