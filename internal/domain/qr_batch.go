package domain

import "time"

type QrBatchStatus string

const (
	BatchPending    QrBatchStatus = "pending"
	BatchProcessing QrBatchStatus = "processing"
	BatchCompleted  QrBatchStatus = "completed"
	BatchFailed     QrBatchStatus = "failed"
)

// BatchSettings is a normalized sheet layout. Lengths are millimetres.
type BatchSettings struct {
	Quantity   int     `json:"quantity"`
	BaseURL    string  `json:"base_url"`
	PageFormat string  `json:"page_format"`
	MarginMM   float64 `json:"margin_mm"`
	GapMM      float64 `json:"gap_mm"`
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
	SizeMode   string  `json:"size_mode"`
	SizeMM     float64 `json:"size_mm"`
}

type QrBatch struct {
	ID uint `json:"id"`
	BatchSettings
	Status          QrBatchStatus `json:"status"`
	PDFPath         string        `json:"pdf_path"`
	ProgressCurrent int           `json:"progress_current"`
	ProgressTotal   int           `json:"progress_total"`
	ProgressPercent int           `json:"progress_percent"`
	StatusMessage   string        `json:"status_message"`
	CreatedBy       *uint         `json:"created_by"`
	StartedAt       *time.Time    `json:"started_at"`
	FinishedAt      *time.Time    `json:"finished_at"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (b QrBatch) IsDownloadable() bool {
	return b.Status == BatchCompleted && b.PDFPath != ""
}

type QrBatchItem struct {
	ID        uint   `json:"id"`
	QrBatchID uint   `json:"qr_batch_id"`
	Sequence  int    `json:"sequence"`
	Token     string `json:"token"`
	URL       string `json:"url"`
}

// BatchProgress is a snapshot written while a batch is processing.
type BatchProgress struct {
	Current int
	Total   int
	Percent int
	Message string
}

// QrBatchView is a batch with its download state.
type QrBatchView struct {
	QrBatch
	DownloadAvailable bool   `json:"download_available"`
	DownloadURL       string `json:"download_url"`
}

// BatchDefaults is what the batch form starts from.
type BatchDefaults struct {
	PageFormat string  `json:"page_format"`
	MarginMM   float64 `json:"margin_mm"`
	GapMM      float64 `json:"gap_mm"`
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
	SizeMode   string  `json:"size_mode"`
	SizePreset string  `json:"size_preset"`
	SizeMM     float64 `json:"size_mm"`
}

type QrBatchSettingsPayload struct {
	Defaults    BatchDefaults      `json:"defaults"`
	SizePresets map[string]float64 `json:"size_presets"`
	Latest      *QrBatchView       `json:"latest_batch"`
}
