package models

import "time"

// Report is a generated incident report. File generation happens elsewhere;
// this service stores the record and where the file lives.
type Report struct {
	ReportID         int64      `db:"report_id" json:"reportId"`
	CompanyID        int64      `db:"company_id" json:"companyId"`
	CaseID           *int64     `db:"case_id" json:"caseId,omitempty"`
	CreatedBy        *int64     `db:"created_by" json:"createdBy,omitempty"`
	Title            string     `db:"title" json:"title"`
	Description      *string    `db:"description" json:"description,omitempty"`
	ReportFileS3Path *string    `db:"report_file_s3_path" json:"reportFileS3Path,omitempty"`
	GeneratedAt      *time.Time `db:"generated_at" json:"generatedAt,omitempty"`
	WasSent          bool       `db:"was_sent" json:"wasSent"`
	TLP              *string    `db:"tlp" json:"tlp,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
}

// CreateReportRequest is the body of POST /reports/create.
type CreateReportRequest struct {
	CompanyID        FlexibleID `json:"companyId"`
	CaseID           *int64     `json:"caseId"`
	Title            string     `json:"title"`
	Description      *string    `json:"description"`
	ReportFileS3Path *string    `json:"reportFileS3Path"`
	GeneratedAt      *time.Time `json:"generatedAt"`
	WasSent          bool       `json:"wasSent"`
	TLP              *string    `json:"tlp"`
}
