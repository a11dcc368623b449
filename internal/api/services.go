package api

import "github.com/listenupapp/aligner/internal/service"

// Services groups the business logic services used by the API server.
type Services struct {
	Session   *service.SessionService
	Alignment *service.AlignmentService
}
