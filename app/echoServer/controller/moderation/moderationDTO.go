package moderation

type FileReportReq struct {
	Target   string `json:"target" validate:"required,oneof=user item"`
	TargetID int64  `json:"target_id" validate:"required,gt=0"`
	Reason   string `json:"reason" validate:"required"`
}

type ResolveReportReq struct {
	Status string `json:"status" validate:"required,oneof=resolved dismissed"`
	Note   string `json:"note,omitempty"`
}

type ReviewVerificationReq struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Note   string `json:"note,omitempty"`
}
