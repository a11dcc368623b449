package api

import (
	"context"
	"io"
	"mime"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/aligner/internal/domain"
	"github.com/listenupapp/aligner/internal/service"
)

func (s *Server) registerAlignmentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "runAlignment",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/align",
		Summary:     "Run alignment",
		Description: "Validates every entry, then aligns them in upload order. With async=true the run continues in the background and progress is published on the session's event stream.",
		Tags:        []string{"Alignment"},
		Middlewares: huma.Middlewares{s.rateLimited},
	}, s.handleRunAlignment)

	huma.Register(s.api, huma.Operation{
		OperationID: "listResults",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}/results",
		Summary:     "List results",
		Description: "Returns the results of the last completed run in entry order",
		Tags:        []string{"Alignment"},
	}, s.handleListResults)

	huma.Register(s.api, huma.Operation{
		OperationID: "getResult",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}/results/{entryID}",
		Summary:     "Get result",
		Description: "Returns the alignment of one entry",
		Tags:        []string{"Alignment"},
	}, s.handleGetResult)

	huma.Register(s.api, huma.Operation{
		OperationID: "downloadTextGrid",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}/results/{entryID}/textgrid",
		Summary:     "Download TextGrid",
		Description: "Downloads the two-tier Praat TextGrid of an entry",
		Tags:        []string{"Alignment"},
	}, s.handleDownloadTextGrid)

	huma.Register(s.api, huma.Operation{
		OperationID: "downloadReport",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}/results/{entryID}/report",
		Summary:     "Download report",
		Description: "Downloads the plain-text alignment report of an entry",
		Tags:        []string{"Alignment"},
	}, s.handleDownloadReport)
}

// RunAlignmentInput contains the run request.
type RunAlignmentInput struct {
	ID         string `path:"id" doc:"Session ID"`
	Async      bool   `query:"async" doc:"Return immediately and follow progress on the event stream"`
	PhoneLimit int    `query:"phone_limit" minimum:"0" doc:"Maximum phones returned per result (0 for all)"`
}

// RunResponse reports the outcome of a run.
type RunResponse struct {
	SessionID string           `json:"session_id" doc:"Session ID"`
	Status    string           `json:"status" doc:"Session status after the request"`
	RunID     string           `json:"run_id,omitempty" doc:"Run ID, also set for accepted async runs"`
	Results   []ResultResponse `json:"results" doc:"Results in entry order"`
}

// RunAlignmentOutput wraps a run response for Huma.
type RunAlignmentOutput struct {
	Status int
	Body   RunResponse
}

// ListResultsInput contains the results request.
type ListResultsInput struct {
	ID         string `path:"id" doc:"Session ID"`
	PhoneLimit int    `query:"phone_limit" minimum:"0" doc:"Maximum phones returned per result (0 for all)"`
}

// ResultsOutput wraps the results list for Huma.
type ResultsOutput struct {
	Body ResultsResponse
}

// GetResultInput identifies one result.
type GetResultInput struct {
	ID         string `path:"id" doc:"Session ID"`
	EntryID    string `path:"entryID" doc:"Entry ID"`
	PhoneLimit int    `query:"phone_limit" minimum:"0" doc:"Maximum phones returned (0 for all)"`
}

// ResultOutput wraps a single result for Huma.
type ResultOutput struct {
	Body ResultResponse
}

func (s *Server) handleRunAlignment(ctx context.Context, input *RunAlignmentInput) (*RunAlignmentOutput, error) {
	if input.Async {
		return s.startAlignment(ctx, input.ID)
	}

	session, err := s.services.Alignment.Run(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}

	return &RunAlignmentOutput{
		Status: http.StatusOK,
		Body: RunResponse{
			SessionID: session.ID,
			Status:    string(session.Status),
			RunID:     session.LastRunID,
			Results:   toResultResponses(session.Results, input.PhoneLimit),
		},
	}, nil
}

// startAlignment reserves the run slot and runs the alignment in the
// background. Only failures that happen before the run starts are reported
// to the caller.
func (s *Server) startAlignment(ctx context.Context, sessionID string) (*RunAlignmentOutput, error) {
	if err := s.services.Session.CheckSession(ctx, sessionID); err != nil {
		return nil, toAPIError(err)
	}
	runID, err := s.services.Alignment.Reserve(sessionID)
	if err != nil {
		return nil, toAPIError(err)
	}

	s.background.Go(func() {
		if _, err := s.services.Alignment.Execute(s.runCtx, sessionID, runID); err != nil {
			s.logger.Warn("Background alignment failed",
				"session_id", sessionID,
				"run_id", runID,
				"error", err)
		}
	})

	return &RunAlignmentOutput{
		Status: http.StatusAccepted,
		Body: RunResponse{
			SessionID: sessionID,
			Status:    string(domain.SessionProcessing),
			RunID:     runID,
			Results:   []ResultResponse{},
		},
	}, nil
}

func (s *Server) handleListResults(ctx context.Context, input *ListResultsInput) (*ResultsOutput, error) {
	session, err := s.services.Session.GetSession(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}

	return &ResultsOutput{
		Body: ResultsResponse{
			SessionID: session.ID,
			RunID:     session.LastRunID,
			Results:   toResultResponses(session.Results, input.PhoneLimit),
		},
	}, nil
}

func (s *Server) handleGetResult(ctx context.Context, input *GetResultInput) (*ResultOutput, error) {
	result, err := s.services.Session.Result(ctx, input.ID, input.EntryID)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &ResultOutput{Body: toResultResponse(result, input.PhoneLimit)}, nil
}

func (s *Server) handleDownloadTextGrid(ctx context.Context, input *EntryPathInput) (*huma.StreamResponse, error) {
	doc, err := s.services.Session.TextGrid(ctx, input.ID, input.EntryID)
	if err != nil {
		return nil, toAPIError(err)
	}
	return documentResponse(doc), nil
}

func (s *Server) handleDownloadReport(ctx context.Context, input *EntryPathInput) (*huma.StreamResponse, error) {
	doc, err := s.services.Session.Report(ctx, input.ID, input.EntryID)
	if err != nil {
		return nil, toAPIError(err)
	}
	return documentResponse(doc), nil
}

// documentResponse streams a rendered document as a file download.
func documentResponse(doc *service.Document) *huma.StreamResponse {
	return &huma.StreamResponse{
		Body: func(ctx huma.Context) {
			ctx.SetHeader("Content-Type", doc.ContentType)
			ctx.SetHeader("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Name}))
			_, _ = io.WriteString(ctx.BodyWriter(), doc.Body)
		},
	}
}

func toResultResponses(results []domain.AlignmentResult, phoneLimit int) []ResultResponse {
	out := make([]ResultResponse, 0, len(results))
	for i := range results {
		out = append(out, toResultResponse(&results[i], phoneLimit))
	}
	return out
}
