package entities

import "time"

// File operations recorded in the local audit trail.
const (
	AuditUpload   = "upload"
	AuditRename   = "rename"
	AuditShare    = "share"
	AuditDelete   = "delete"
	AuditRollback = "rollback"
)

type FileAudit struct {
	ID            int64          `json:"id"`
	FileID        string         `json:"fileId"`
	Operation     string         `json:"operation"`
	Operator      string         `json:"operator"`
	OperationTime time.Time      `json:"operationTime"`
	Details       map[string]any `json:"details,omitempty"`
}
