package api

import (
	"github.com/lysyi3m/crawler-api/app/auth"
	"github.com/lysyi3m/crawler-api/app/feed"
	"github.com/lysyi3m/crawler-api/app/identity"
	"github.com/lysyi3m/crawler-api/app/items"
	"github.com/lysyi3m/crawler-api/app/validation"
)

const (
	principalKey = "principal"

	maxImportBodyBytes = 10 << 20

	validationTitle   = "One or more validation errors occurred."
	unexpectedMessage = "An unexpected error occurred."
)

type Handler struct {
	items    *items.Service
	importer *feed.Importer
	accounts *identity.Accounts
	tokens   *auth.TokenService
	version  string
}

type validationProblem struct {
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Errors validation.Errors `json:"errors"`
}

type messageResponse struct {
	Message string `json:"message"`
}
