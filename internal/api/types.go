package api

import "time"

// DTOs mirrored from the backend. Lifecycle and consistency are the
// server's responsibility; nothing here is validated beyond decoding.

type Case struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	TransactionType string    `json:"transaction_type"`
	Status          string    `json:"status"`
	ConfidenceScore float64   `json:"confidence_score"`
	Pinned          bool      `json:"pinned"`
	Summary         string    `json:"summary"`
	DocumentCount   int       `json:"document_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Analysis status values as the backend reports them. The legacy French
// values still appear on older cases; service.NormalizeStatus folds them.
const (
	StatusPending   = "pending"
	StatusAnalyzing = "analyzing"
	StatusReady     = "ready"
	StatusFailed    = "failed"
)

type Document struct {
	ID            string `json:"id"`
	CaseID        string `json:"case_id"`
	Filename      string `json:"filename"`
	FileType      string `json:"file_type"`
	Size          int64  `json:"size"`
	ExtractedText string `json:"extracted_text,omitempty"`
	Transcription string `json:"transcription,omitempty"`
	Extraction    string `json:"extraction_status"`
	CreatedAt     time.Time `json:"created_at"`
}

type ChecklistItem struct {
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Category string `json:"category"`
}

type Checklist struct {
	Items            []ChecklistItem `json:"items"`
	AttentionPoints  []string        `json:"attention_points"`
	MissingDocuments []string        `json:"missing_documents"`
	ConfidenceScore  float64         `json:"confidence_score"`
}

type Brief struct {
	CaseID      string    `json:"case_id"`
	Body        string    `json:"body"`
	GeneratedAt time.Time `json:"generated_at"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the academic-variant grouping (a course term).
type Session struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Semester string `json:"semester"`
	Year     int    `json:"year"`
	Start    string `json:"start_date"`
	End      string `json:"end_date"`
}

// Module groups documents within a case for flashcard and audio-summary
// generation scoping.
type Module struct {
	ID          string   `json:"id"`
	CaseID      string   `json:"case_id"`
	Name        string   `json:"name"`
	DocumentIDs []string `json:"document_ids"`
}

type Deck struct {
	ID        string      `json:"id"`
	ModuleID  string      `json:"module_id"`
	Title     string      `json:"title"`
	Cards     []Flashcard `json:"cards"`
	CreatedAt time.Time   `json:"created_at"`
}

type Flashcard struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

type AudioSummary struct {
	ID       string  `json:"id"`
	ModuleID string  `json:"module_id"`
	Name     string  `json:"name"`
	Language string  `json:"language"`
	Duration float64 `json:"duration_seconds"`
	Status   string  `json:"status"`
	URL      string  `json:"url,omitempty"`
}

type ModelInfo struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	ContextWindow int    `json:"context_window"`
}

type ExtractionMethod struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// LinkProgress is one event from a directory-link stream.
type LinkProgress struct {
	LinkID      string  `json:"link_id"`
	Indexed     int     `json:"indexed"`
	Total       int     `json:"total"`
	Percentage  float64 `json:"percentage"`
	CurrentFile string  `json:"current_file"`
}

// AnalysisEvent is one event from an analysis progress stream.
type AnalysisEvent struct {
	Stage      string  `json:"stage"`
	Percentage float64 `json:"percentage"`
	Status     string  `json:"status"`
	Message    string  `json:"message,omitempty"`
}

// Terminal reports whether the event ends the stream.
func (e AnalysisEvent) Terminal() bool {
	return e.Status == StatusReady || e.Status == StatusFailed
}
