package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createSession",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions",
		Summary:       "Create session",
		Description:   "Starts an empty alignment session",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Get session",
		Description: "Returns the session status and its entries",
		Tags:        []string{"Sessions"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteSession",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Delete session",
		Description: "Discards a session with all of its entries and results",
		Tags:        []string{"Sessions"},
	}, s.handleDeleteSession)
}

// SessionPathInput identifies a session.
type SessionPathInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// SessionOutput wraps a session response for Huma.
type SessionOutput struct {
	Body SessionResponse
}

func (s *Server) handleCreateSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	session, err := s.services.Session.CreateSession(ctx)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &SessionOutput{Body: toSessionResponse(session)}, nil
}

func (s *Server) handleGetSession(ctx context.Context, input *SessionPathInput) (*SessionOutput, error) {
	session, err := s.services.Session.GetSession(ctx, input.ID)
	if err != nil {
		return nil, toAPIError(err)
	}
	return &SessionOutput{Body: toSessionResponse(session)}, nil
}

func (s *Server) handleDeleteSession(ctx context.Context, input *SessionPathInput) (*MessageOutput, error) {
	err := s.services.Alignment.Guard(input.ID, func() error {
		return s.services.Session.DeleteSession(ctx, input.ID)
	})
	if err != nil {
		return nil, toAPIError(err)
	}
	return &MessageOutput{Body: MessageResponse{Message: "Session deleted"}}, nil
}
