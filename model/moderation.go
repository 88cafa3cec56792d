package model

import "time"

type ReportTarget string

const (
	ReportUser ReportTarget = "user"
	ReportItem ReportTarget = "item"
)

type ReportStatus string

const (
	ReportOpen      ReportStatus = "open"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

type Report struct {
	ID         int64        `json:"id"`
	ReporterID int64        `json:"reporter_id"`
	Target     ReportTarget `json:"target"`
	TargetID   int64        `json:"target_id"`
	Reason     string       `json:"reason"`
	Status     ReportStatus `json:"status"`
	Note       *string      `json:"note,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

type Verification struct {
	ID        int64              `json:"id"`
	RentalID  int64              `json:"rental_id"`
	UserID    int64              `json:"user_id"`
	FilePath  string             `json:"-"`
	FileName  string             `json:"file_name"`
	Status    VerificationStatus `json:"status"`
	Note      *string            `json:"note,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

type Activity struct {
	ID        int64     `json:"id"`
	ActorID   int64     `json:"actor_id"`
	Action    string    `json:"action"`
	RefTable  string    `json:"ref_table"`
	RefID     int64     `json:"ref_id"`
	CreatedAt time.Time `json:"created_at"`
}
