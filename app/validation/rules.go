package validation

import (
	"regexp"
	"time"

	"github.com/lysyi3m/crawler-api/app/models"
)

const (
	TitleMaxLength   = 256
	URLMaxLength     = 2048
	SourceMaxLength  = 128
	SummaryMaxLength = 1024
)

// Failures are keyed by request property name, not by the camelCase JSON name
const (
	FieldTitle           = "Title"
	FieldURL             = "Url"
	FieldSource          = "Source"
	FieldSummary         = "Summary"
	FieldCollectedAt     = "CollectedAt"
	FieldEmail           = "Email"
	FieldUserName        = "UserName"
	FieldPassword        = "Password"
	FieldDisplayName     = "DisplayName"
	FieldEmailOrUserName = "EmailOrUserName"
)

var userNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func CreateScrapedItem(req models.CreateScrapedItemRequest, now time.Time) Errors {
	v := New()

	v.String(FieldTitle, req.Title).
		NotEmpty("Title is required.").
		MaxLength(TitleMaxLength, "Title must not exceed 256 characters.")

	v.String(FieldURL, req.URL).
		NotEmpty("URL is required.").
		HTTPURL("URL must be an absolute http or https address.").
		MaxLength(URLMaxLength, "URL must not exceed 2048 characters.")

	source := deref(req.Source)
	v.String(FieldSource, source).When(source != "").
		MaxLength(SourceMaxLength, "Source must not exceed 128 characters.")

	summary := deref(req.Summary)
	v.String(FieldSummary, summary).When(summary != "").
		MaxLength(SummaryMaxLength, "Summary must not exceed 1024 characters.")

	v.Time(FieldCollectedAt, req.CollectedAt).
		NotAfter(now, "Collected time must not be in the future.")

	return v.Errors()
}

func UpdateScrapedItem(req models.UpdateScrapedItemRequest, now time.Time) Errors {
	v := New()

	v.String(FieldTitle, deref(req.Title)).When(req.Title != nil).
		NotEmpty("Title is required.").
		MaxLength(TitleMaxLength, "Title must not exceed 256 characters.")

	v.String(FieldURL, deref(req.URL)).When(req.URL != nil).
		NotEmpty("URL is required.").
		HTTPURL("URL must be an absolute http or https address.").
		MaxLength(URLMaxLength, "URL must not exceed 2048 characters.")

	source := deref(req.Source)
	v.String(FieldSource, source).When(source != "").
		MaxLength(SourceMaxLength, "Source must not exceed 128 characters.")

	summary := deref(req.Summary)
	v.String(FieldSummary, summary).When(summary != "").
		MaxLength(SummaryMaxLength, "Summary must not exceed 1024 characters.")

	v.Time(FieldCollectedAt, req.CollectedAt).
		NotAfter(now, "Collected time must not be in the future.")

	return v.Errors()
}

func Register(req models.RegisterRequest) Errors {
	v := New()

	v.String(FieldEmail, req.Email).
		NotEmpty("Email is required.").
		Email("Email format is invalid.").
		MaxLength(256, "Email must not exceed 256 characters.")

	v.String(FieldUserName, req.UserName).
		NotEmpty("User name is required.").
		MinLength(3, "User name must be at least 3 characters.").
		MaxLength(64, "User name must not exceed 64 characters.").
		Matches(userNamePattern, "User name may only contain letters, digits, underscores and hyphens.")

	v.String(FieldPassword, req.Password).
		NotEmpty("Password is required.").
		MinLength(6, "Password must be at least 6 characters.").
		MaxLength(128, "Password must not exceed 128 characters.")

	v.String(FieldDisplayName, req.DisplayName).When(req.DisplayName != "").
		MaxLength(128, "Display name must not exceed 128 characters.")

	return v.Errors()
}

func Login(req models.LoginRequest) Errors {
	v := New()

	v.String(FieldEmailOrUserName, req.EmailOrUserName).
		NotEmpty("Email or user name is required.").
		MaxLength(256, "Email or user name must not exceed 256 characters.")

	v.String(FieldPassword, req.Password).
		NotEmpty("Password is required.").
		MaxLength(128, "Password must not exceed 128 characters.")

	return v.Errors()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
