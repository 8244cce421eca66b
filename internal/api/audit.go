package api

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// AuditLogger writes audit and security lines. Seeds never reach the log
// raw, only a short hash.
type AuditLogger struct {
	logger *log.Logger
}

// NewAuditLogger logs to stdout.
func NewAuditLogger() *AuditLogger {
	return NewAuditLoggerTo(os.Stdout)
}

// NewAuditLoggerTo logs to w.
func NewAuditLoggerTo(w io.Writer) *AuditLogger {
	return &AuditLogger{logger: log.New(w, "[AUDIT] ", log.LstdFlags|log.LUTC)}
}

// LogSessionEvent records a session lifecycle step.
func (al *AuditLogger) LogSessionEvent(requestID, event, sessionID, game string, details map[string]interface{}) {
	al.logger.Printf(
		"session_event request_id=%s event=%s session_id=%s game=%s details=%+v engine_version=%s timestamp=%s",
		requestID,
		event,
		sessionID,
		game,
		sanitizeContext(details),
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSecurityEvent logs failed validations and other suspicious input.
func (al *AuditLogger) LogSecurityEvent(requestID, eventType, description string, context map[string]interface{}, remoteAddr string) {
	al.logger.Printf(
		"security_event request_id=%s type=%s description=%q context=%+v remote_addr=%s engine_version=%s timestamp=%s",
		requestID,
		eventType,
		description,
		sanitizeContext(context),
		remoteAddr,
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSystemStartup logs system startup information
func (al *AuditLogger) LogSystemStartup(addr string, config map[string]interface{}) {
	al.logger.Printf(
		"system_startup addr=%s config=%+v engine_version=%s git_commit=%s build_time=%s timestamp=%s",
		addr,
		sanitizeContext(config),
		EngineVersion,
		GitCommit,
		BuildTime,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSystemShutdown logs system shutdown information
func (al *AuditLogger) LogSystemShutdown(reason string, uptime time.Duration) {
	al.logger.Printf(
		"system_shutdown reason=%s uptime=%v engine_version=%s timestamp=%s",
		reason,
		uptime,
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// hashSeed returns the first 16 hex chars of the seed's SHA256.
func hashSeed(seed string) string {
	if seed == "" {
		return "empty"
	}
	hash := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(hash[:])[:16]
}

func sanitizeContext(context map[string]interface{}) map[string]interface{} {
	if context == nil {
		return nil
	}

	sanitized := make(map[string]interface{}, len(context))
	for key, value := range context {
		switch key {
		case "server_seed", "client_seed":
			if s, ok := value.(string); ok {
				sanitized[key+"_hash"] = hashSeed(s)
			} else {
				sanitized[key+"_hash"] = fmt.Sprintf("non_string_value_%T", value)
			}
		case "secret", "password", "token", "authorization":
			sanitized[key] = "[REDACTED]"
		default:
			sanitized[key] = value
		}
	}
	return sanitized
}
