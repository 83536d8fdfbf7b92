package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/crawler-api/app/models"
)

func strPtr(s string) *string { return &s }

func TestCreateScrapedItemValid(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	errs := CreateScrapedItem(models.CreateScrapedItemRequest{
		Title:       "Title",
		URL:         "http://example.com",
		CollectedAt: &past,
	}, now)

	if errs != nil {
		t.Errorf("Expected no errors, got %v", errs)
	}
}

func TestCreateScrapedItemCollectsEveryFailure(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)

	errs := CreateScrapedItem(models.CreateScrapedItemRequest{
		Title:       "",
		URL:         "",
		Source:      strPtr(strings.Repeat("s", 129)),
		Summary:     strPtr(strings.Repeat("s", 1025)),
		CollectedAt: &future,
	}, now)

	for _, field := range []string{FieldTitle, FieldURL, FieldSource, FieldSummary, FieldCollectedAt} {
		if len(errs[field]) == 0 {
			t.Errorf("Expected error for field %s", field)
		}
	}

	// Empty URL fails both the required and the format rule
	if len(errs[FieldURL]) != 2 {
		t.Errorf("Expected 2 url errors, got %v", errs[FieldURL])
	}
}

func TestCreateScrapedItemURLFormat(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"not-a-url", false},
		{"ftp://example.com/file", false},
		{"/relative/path", false},
		{"http://", false},
		{"http://example.com", true},
		{"HTTPS://example.com/a?b=c", true},
	}

	for _, tt := range tests {
		errs := CreateScrapedItem(models.CreateScrapedItemRequest{Title: "t", URL: tt.url}, time.Now())
		_, hasErr := errs[FieldURL]
		if hasErr == tt.valid {
			t.Errorf("URL %q: expected valid=%v, got errors %v", tt.url, tt.valid, errs[FieldURL])
		}
	}
}

func TestCreateScrapedItemLengthsCountCharacters(t *testing.T) {
	title := strings.Repeat("é", TitleMaxLength)

	errs := CreateScrapedItem(models.CreateScrapedItemRequest{Title: title, URL: "https://example.com"}, time.Now())
	if errs != nil {
		t.Errorf("Expected 256 multi-byte characters to be accepted, got %v", errs)
	}

	errs = CreateScrapedItem(models.CreateScrapedItemRequest{Title: title + "é", URL: "https://example.com"}, time.Now())
	if len(errs[FieldTitle]) != 1 {
		t.Errorf("Expected one title error, got %v", errs[FieldTitle])
	}
}

func TestUpdateScrapedItemOnlyChecksSuppliedFields(t *testing.T) {
	if errs := UpdateScrapedItem(models.UpdateScrapedItemRequest{}, time.Now()); errs != nil {
		t.Errorf("Expected empty update to be valid, got %v", errs)
	}

	errs := UpdateScrapedItem(models.UpdateScrapedItemRequest{
		Title: strPtr(""),
		URL:   strPtr("nope"),
	}, time.Now())

	if len(errs[FieldTitle]) != 1 {
		t.Errorf("Expected title error, got %v", errs[FieldTitle])
	}
	if len(errs[FieldURL]) != 1 {
		t.Errorf("Expected url error, got %v", errs[FieldURL])
	}
}

func TestRegister(t *testing.T) {
	valid := models.RegisterRequest{Email: "a@x.com", Password: "secret", UserName: "alice"}
	if errs := Register(valid); errs != nil {
		t.Errorf("Expected valid registration, got %v", errs)
	}

	errs := Register(models.RegisterRequest{Email: "invalid", Password: "123", UserName: "a!"})
	if len(errs[FieldEmail]) != 1 {
		t.Errorf("Expected email format error, got %v", errs[FieldEmail])
	}
	if len(errs[FieldPassword]) != 1 {
		t.Errorf("Expected password length error, got %v", errs[FieldPassword])
	}
	if len(errs[FieldUserName]) != 2 {
		t.Errorf("Expected user name length and pattern errors, got %v", errs[FieldUserName])
	}
}

func TestLogin(t *testing.T) {
	errs := Login(models.LoginRequest{})
	if len(errs) != 2 {
		t.Errorf("Expected 2 fields with errors, got %v", errs)
	}

	if errs := Login(models.LoginRequest{EmailOrUserName: "alice", Password: "x"}); errs != nil {
		t.Errorf("Expected valid login, got %v", errs)
	}
}

func TestErrorsMessage(t *testing.T) {
	errs := Errors{}
	errs.Add("url", "bad")
	errs.Add("title", "missing")

	if got := errs.Error(); got != "validation failed: title: missing, url: bad" {
		t.Errorf("Unexpected error string: %s", got)
	}
}

func TestIsEmail(t *testing.T) {
	for value, want := range map[string]bool{
		"a@x.com": true,
		"@x.com":  false,
		"a@":      false,
		"a@b@c":   false,
		"plain":   false,
	} {
		if got := IsEmail(value); got != want {
			t.Errorf("IsEmail(%q) = %v, expected %v", value, got, want)
		}
	}
}

func TestErrorsAreKeyedByPropertyName(t *testing.T) {
	errs := CreateScrapedItem(models.CreateScrapedItemRequest{Title: "t", URL: "not-a-url"}, time.Now())

	if len(errs["Url"]) != 1 {
		t.Errorf("Expected one error under 'Url', got %v", errs)
	}
	if _, ok := errs["url"]; ok {
		t.Errorf("Expected no camelCase 'url' key, got %v", errs)
	}

	errs = Register(models.RegisterRequest{})
	for _, field := range []string{"Email", "UserName", "Password"} {
		if len(errs[field]) == 0 {
			t.Errorf("Expected error under %q, got %v", field, errs)
		}
	}
}
