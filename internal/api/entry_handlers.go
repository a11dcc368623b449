package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/aligner/internal/service"
)

func (s *Server) registerEntryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "uploadEntry",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions/{id}/entries",
		Summary:       "Upload audio",
		Description:   "Adds an audio file to the session with an empty transcript. The request body is the raw file; its contents are not inspected.",
		Tags:          []string{"Entries"},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  s.maxUploadBytes,
		Middlewares:   huma.Middlewares{s.rateLimited},
	}, s.handleUploadEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "listEntries",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}/entries",
		Summary:     "List entries",
		Description: "Returns the session's entries in upload order",
		Tags:        []string{"Entries"},
	}, s.handleListEntries)

	huma.Register(s.api, huma.Operation{
		OperationID: "setTranscript",
		Method:      http.MethodPut,
		Path:        "/api/v1/sessions/{id}/entries/{entryID}/transcript",
		Summary:     "Set transcript",
		Description: "Replaces the transcript of an entry. Previous results are discarded.",
		Tags:        []string{"Entries"},
	}, s.handleSetTranscript)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeEntry",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sessions/{id}/entries/{entryID}",
		Summary:     "Remove entry",
		Description: "Removes an entry from the session. Previous results are discarded.",
		Tags:        []string{"Entries"},
	}, s.handleRemoveEntry)
}

// UploadEntryInput contains an audio upload.
type UploadEntryInput struct {
	ID          string `path:"id" doc:"Session ID"`
	Filename    string `query:"filename" required:"true" maxLength:"255" doc:"Original audio file name"`
	ContentType string `header:"Content-Type" doc:"Audio content type"`
	RawBody     []byte
}

// EntryPathInput identifies an entry within a session.
type EntryPathInput struct {
	ID      string `path:"id" doc:"Session ID"`
	EntryID string `path:"entryID" doc:"Entry ID"`
}

// SetTranscriptInput contains the transcript update request.
type SetTranscriptInput struct {
	ID      string `path:"id" doc:"Session ID"`
	EntryID string `path:"entryID" doc:"Entry ID"`
	Body    struct {
		Transcript string `json:"transcript" maxLength:"100000" doc:"Transcript text"`
	}
}

// EntryOutput wraps an entry response for Huma.
type EntryOutput struct {
	Body EntryResponse
}

// EntriesOutput wraps the entry list for Huma.
type EntriesOutput struct {
	Body struct {
		Entries []EntryResponse `json:"entries" doc:"Entries in upload order"`
	}
}

func (s *Server) handleUploadEntry(ctx context.Context, input *UploadEntryInput) (*EntryOutput, error) {
	entry, err := s.services.Session.AddEntry(ctx, input.ID, service.AddEntryRequest{
		Filename:    input.Filename,
		ContentType: input.ContentType,
		Size:        int64(len(input.RawBody)),
	})
	if err != nil {
		return nil, toAPIError(err)
	}

	s.logger.Info("Audio uploaded",
		"session_id", input.ID,
		"entry_id", entry.ID,
		"identifier", entry.Identifier,
		"body_size", len(input.RawBody),
	)

	return &EntryOutput{Body: toEntryResponse(entry)}, nil
}

func (s *Server) handleListEntries(ctx context.Context, input *SessionPathInput) (*EntriesOutput, error) {
	entries, err := s.services.Session.ListEntries(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}

	out := &EntriesOutput{}
	out.Body.Entries = toEntryResponses(entries)
	return out, nil
}

func (s *Server) handleSetTranscript(ctx context.Context, input *SetTranscriptInput) (*EntryOutput, error) {
	entry, err := s.services.Session.SetTranscript(ctx, input.ID, input.EntryID, service.SetTranscriptRequest{
		Transcript: input.Body.Transcript,
	})
	if err != nil {
		return nil, toAPIError(err)
	}
	return &EntryOutput{Body: toEntryResponse(entry)}, nil
}

func (s *Server) handleRemoveEntry(ctx context.Context, input *EntryPathInput) (*MessageOutput, error) {
	if err := s.services.Session.RemoveEntry(ctx, input.ID, input.EntryID); err != nil {
		return nil, toAPIError(err)
	}
	return &MessageOutput{Body: MessageResponse{Message: "Entry removed"}}, nil
}
