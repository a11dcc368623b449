package api

import (
	"time"

	"github.com/listenupapp/aligner/internal/domain"
	"github.com/listenupapp/aligner/internal/format"
)

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message" doc:"Result message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// EntryResponse is an uploaded audio file and its transcript.
type EntryResponse struct {
	ID            string    `json:"id" doc:"Entry ID"`
	Identifier    string    `json:"identifier" doc:"Original audio file name"`
	Transcript    string    `json:"transcript" doc:"Transcript text"`
	HasTranscript bool      `json:"has_transcript" doc:"Whether the transcript is non-blank"`
	ContentType   string    `json:"content_type,omitempty" doc:"Uploaded content type"`
	Size          int64     `json:"size" doc:"Uploaded size in bytes"`
	AddedAt       time.Time `json:"added_at" doc:"Upload time"`
}

// SessionResponse describes a session without its full results.
type SessionResponse struct {
	ID          string          `json:"id" doc:"Session ID"`
	Status      string          `json:"status" enum:"idle,processing,completed,failed" doc:"Run status"`
	Entries     []EntryResponse `json:"entries" doc:"Entries in upload order"`
	ResultCount int             `json:"result_count" doc:"Number of results from the last completed run"`
	LastRunID   string          `json:"last_run_id,omitempty" doc:"ID of the most recent run"`
	LastError   string          `json:"last_error,omitempty" doc:"Why the most recent run failed"`
	CreatedAt   time.Time       `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time       `json:"updated_at" doc:"Last modification time"`
	ExpiresAt   time.Time       `json:"expires_at" doc:"When the idle session is discarded"`
}

// ResultResponse is the alignment of one entry.
type ResultResponse struct {
	EntryID              string            `json:"entry_id" doc:"Entry ID"`
	Identifier           string            `json:"identifier" doc:"Audio file name"`
	Transcript           string            `json:"transcript" doc:"Transcript that was aligned"`
	TotalDuration        float64           `json:"total_duration" doc:"Total duration in seconds"`
	WordCount            int               `json:"word_count" doc:"Number of word intervals"`
	PhoneCount           int               `json:"phone_count" doc:"Number of phone intervals"`
	AverageWordDuration  float64           `json:"average_word_duration" doc:"Mean word duration in seconds"`
	AveragePhoneDuration float64           `json:"average_phone_duration" doc:"Mean phone duration in seconds"`
	Words                []domain.Interval `json:"words" doc:"Word intervals"`
	Phones               []domain.Interval `json:"phones" doc:"Phone intervals, possibly truncated by phone_limit"`
	MorePhones           int               `json:"more_phones,omitempty" doc:"Phones omitted by phone_limit"`
	TextGridName         string            `json:"textgrid_name" doc:"Download file name of the TextGrid"`
	ReportName           string            `json:"report_name" doc:"Download file name of the report"`
}

// ResultsResponse lists the results of the last completed run.
type ResultsResponse struct {
	SessionID string           `json:"session_id" doc:"Session ID"`
	RunID     string           `json:"run_id,omitempty" doc:"Run that produced the results"`
	Results   []ResultResponse `json:"results" doc:"Results in entry order"`
}

func toEntryResponse(e *domain.TranscriptEntry) EntryResponse {
	return EntryResponse{
		ID:            e.ID,
		Identifier:    e.Identifier,
		Transcript:    e.Transcript,
		HasTranscript: e.HasTranscript(),
		ContentType:   e.ContentType,
		Size:          e.Size,
		AddedAt:       e.AddedAt,
	}
}

func toEntryResponses(entries []domain.TranscriptEntry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toEntryResponse(&entries[i]))
	}
	return out
}

func toSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{
		ID:          s.ID,
		Status:      string(s.Status),
		Entries:     toEntryResponses(s.Entries),
		ResultCount: len(s.Results),
		LastRunID:   s.LastRunID,
		LastError:   s.LastError,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		ExpiresAt:   s.ExpiresAt,
	}
}

// toResultResponse converts a result, keeping at most phoneLimit phones
// when phoneLimit is positive.
func toResultResponse(r *domain.AlignmentResult, phoneLimit int) ResultResponse {
	phones := r.Phones
	more := 0
	if phoneLimit > 0 && len(phones) > phoneLimit {
		more = len(phones) - phoneLimit
		phones = phones[:phoneLimit]
	}

	return ResultResponse{
		EntryID:              r.EntryID,
		Identifier:           r.Identifier,
		Transcript:           r.Transcript,
		TotalDuration:        r.TotalDuration,
		WordCount:            r.WordCount(),
		PhoneCount:           r.PhoneCount(),
		AverageWordDuration:  r.AverageWordDuration,
		AveragePhoneDuration: r.AveragePhoneDuration,
		Words:                r.Words,
		Phones:               phones,
		MorePhones:           more,
		TextGridName:         format.TextGridName(r.Identifier),
		ReportName:           format.ReportName(r.Identifier),
	}
}
