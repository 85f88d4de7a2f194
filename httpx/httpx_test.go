package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/user/timemanager-go/apperror"
)

type signupBody struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
	Role     string `json:"role" validate:"omitempty,oneof=employee manager"`
}

func decodeBody(body string) error {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dst signupBody
	return DecodeJSON(r, &dst)
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"valid", `{"username":"alice","email":"alice@example.com","password":"Password123"}`, ""},
		{"missing fields listed together", `{"password":"Password123"}`, "Missing: username, email"},
		{"bad email", `{"username":"a","email":"nope","password":"Password123"}`, "Invalid email format"},
		{"weak password", `{"username":"a","email":"a@b.co","password":"password"}`, "Password: 8+ chars, 1 uppercase, 1 number"},
		{"bad role", `{"username":"a","email":"a@b.co","password":"Password123","role":"boss"}`, "Invalid role: must be one of employee manager"},
		{"empty body", ``, "request body is required"},
		{"malformed json", `{"username":`, "invalid request body"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := decodeBody(test.body)
			if test.wantMsg == "" {
				if err != nil {
					t.Fatalf("DecodeJSON() error = %v, want nil", err)
				}
				return
			}
			if !apperror.IsValidationError(err) {
				t.Fatalf("DecodeJSON() error = %v, want ValidationError", err)
			}
			if msg := apperror.FromError(err).Message; !strings.HasPrefix(msg, test.wantMsg) {
				t.Errorf("message = %q, want prefix %q", msg, test.wantMsg)
			}
		})
	}
}

func TestIsStrongPassword(t *testing.T) {
	tests := map[string]bool{
		"Password123": true,
		"Pass12":      false,
		"password123": false,
		"PASSWORDabc": false,
		"Ünïcode1xyz": true,
	}
	for in, want := range tests {
		if got := IsStrongPassword(in); got != want {
			t.Errorf("IsStrongPassword(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWriteError_UniformPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)

	WriteError(rec, req, apperror.NewForbiddenError("Insufficient permissions", nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	var body apperror.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Status != http.StatusForbidden || body.Error.Message != "Insufficient permissions" {
		t.Errorf("body = %+v", body)
	}
}

func TestWriteError_PlainErrorBecomes500(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(rec, req, errors.New("pool closed"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "pool closed") {
		t.Error("internal cause must not leak to the client")
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2025-03-10", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), false},
		{"2025-03-10T08:30:00Z", time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC), false},
		{"2025-03-10T10:30:00+02:00", time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC), false},
		{"2025-03-10T08:30:00", time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC), false},
		{"yesterday", time.Time{}, true},
	}
	for _, test := range tests {
		got, err := ParseTime(test.in, "start_date")
		if (err != nil) != test.wantErr {
			t.Fatalf("ParseTime(%q) error = %v, wantErr %v", test.in, err, test.wantErr)
		}
		if !got.Equal(test.want) {
			t.Errorf("ParseTime(%q) = %v, want %v", test.in, got, test.want)
		}
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID("42", "id"); err != nil || id != 42 {
		t.Errorf("ParseID(42) = %d, %v", id, err)
	}
	for _, bad := range []string{"", "0", "-3", "abc"} {
		if _, err := ParseID(bad, "id"); !apperror.IsValidationError(err) {
			t.Errorf("ParseID(%q) error = %v, want ValidationError", bad, err)
		}
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":500`) {
		t.Errorf("body = %s, want uniform error payload", rec.Body.String())
	}
}

func TestNullable(t *testing.T) {
	type body struct {
		TeamID Nullable[int64] `json:"team_id"`
	}
	tests := []struct {
		raw       string
		wantSet   bool
		wantValue *int64
	}{
		{`{}`, false, nil},
		{`{"team_id":null}`, true, nil},
		{`{"team_id":4}`, true, func() *int64 { v := int64(4); return &v }()},
	}
	for _, test := range tests {
		var b body
		if err := json.Unmarshal([]byte(test.raw), &b); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", test.raw, err)
		}
		if b.TeamID.Set != test.wantSet {
			t.Errorf("%s: Set = %v, want %v", test.raw, b.TeamID.Set, test.wantSet)
		}
		if (b.TeamID.Value == nil) != (test.wantValue == nil) ||
			(test.wantValue != nil && *b.TeamID.Value != *test.wantValue) {
			t.Errorf("%s: Value = %v, want %v", test.raw, b.TeamID.Value, test.wantValue)
		}
	}
	var b body
	if err := json.Unmarshal([]byte(`{"team_id":"x"}`), &b); err == nil {
		t.Error("wrong type accepted")
	}
}

func TestLooseInt64(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{`12`, 12, false},
		{`"12"`, 12, false},
		{`"12.5"`, 0, true},
		{`"abc"`, 0, true},
		{`true`, 0, true},
	}
	for _, test := range tests {
		var n LooseInt64
		err := json.Unmarshal([]byte(test.raw), &n)
		if (err != nil) != test.wantErr {
			t.Errorf("Unmarshal(%s) error = %v, wantErr %v", test.raw, err, test.wantErr)
			continue
		}
		if !test.wantErr && int64(n) != test.want {
			t.Errorf("Unmarshal(%s) = %d, want %d", test.raw, n, test.want)
		}
	}
}
