package domain

import "time"

type ExportStatus string

const (
	ExportQueued     ExportStatus = "queued"
	ExportProcessing ExportStatus = "processing"
	ExportCompleted  ExportStatus = "completed"
	ExportFailed     ExportStatus = "failed"
)

type WishImageExport struct {
	ID           uint         `json:"id"`
	QrID         uint         `json:"qr_id"`
	UserID       uint         `json:"user_id"`
	Status       ExportStatus `json:"status"`
	FilePath     string       `json:"file_path"`
	TotalImages  int          `json:"total_images"`
	ErrorMessage string       `json:"error_message"`
	StartedAt    *time.Time   `json:"started_at"`
	FinishedAt   *time.Time   `json:"finished_at"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (e WishImageExport) IsInProgress() bool {
	return e.Status == ExportQueued || e.Status == ExportProcessing
}

type WishImageExportView struct {
	WishImageExport
	DownloadAvailable bool   `json:"download_available"`
	DownloadURL       string `json:"download_url"`
}
