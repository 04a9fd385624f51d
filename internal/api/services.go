package api

import (
	"github.com/contactdock/contactdock-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth    *service.AuthService
	Contact *service.ContactService
	Tag     *service.TagService
	Stats   *service.StatsService
	Import  *service.ImportService
}
