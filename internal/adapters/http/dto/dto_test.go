package dto

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestErrorResponse(t *testing.T) {
	resp := NewErrorResponse(ErrorCodeValidation, "request validation failed").
		WithDetails(map[string]string{"body": "this field is required"}).
		WithTraceID("abc")

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"error": {"code":"VALIDATION_ERROR","message":"request validation failed","details":{"body":"this field is required"}},
		"traceId": "abc"
	}`, string(b))
}

func TestErrorResponse_Status(t *testing.T) {
	tests := map[string]int{
		ErrorCodeNotFound:    http.StatusNotFound,
		ErrorCodeValidation:  http.StatusBadRequest,
		ErrorCodeBadRequest:  http.StatusBadRequest,
		ErrorCodeUnavailable: http.StatusServiceUnavailable,
		ErrorCodeTimeout:     http.StatusGatewayTimeout,
		ErrorCodeInternal:    http.StatusInternalServerError,
		"SOMETHING_ELSE":     http.StatusInternalServerError,
	}

	for code, want := range tests {
		assert.Equal(t, want, NewErrorResponse(code, "").Status(), code)
	}
}

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{in: `"abc"`, want: "abc"},
		{in: `42`, want: "42"},
		{in: `null`, want: ""},
		{in: `true`, wantErr: true},
		{in: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var id ID

			err := json.Unmarshal([]byte(tt.in), &id)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestMessageSavedRequest_ToEvent(t *testing.T) {
	body := `{
		"sender": "messages.Message",
		"signal": "post_save",
		"created": true,
		"raw": false,
		"using": "default",
		"instance": {
			"id": 7,
			"subject": "Lunch",
			"body": "noon?",
			"sender": {"id": 1, "username": "alice"},
			"recipient": {"id": 2, "username": "bob", "email": "bob@example.com"},
			"sent_at": "2024-05-01T12:00:00Z"
		}
	}`

	var req MessageSavedRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &raw))

	ev := req.ToEvent(raw)

	assert.True(t, ev.Created)
	assert.Equal(t, "post_save", ev.Signal)
	assert.Equal(t, "messages.Message", ev.Sender)
	assert.Equal(t, map[string]any{"raw": false, "using": "default"}, ev.Extra)

	require.NotNil(t, ev.Instance)
	assert.Equal(t, "7", ev.Instance.ID)
	assert.Equal(t, "alice", ev.Instance.Sender.Username)
	assert.Equal(t, "bob@example.com", ev.Instance.Recipient.Email)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), ev.Instance.SentAt)
}

func TestMessageSavedRequest_NilInstance(t *testing.T) {
	req := MessageSavedRequest{Created: true}

	ev := req.ToEvent(nil)
	assert.Nil(t, ev.Instance)
	assert.Nil(t, ev.Extra)
	assert.Len(t, req.Options(), 2)
}

func TestBindAndValidate(t *testing.T) {
	bind := func(body string, v any) error {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		return BindAndValidate(c, v)
	}

	t.Run("valid", func(t *testing.T) {
		var req QuoteRequest
		require.NoError(t, bind(`{"sender":{"username":"alice"},"body":"hi","lang":"de"}`, &req))
		assert.Equal(t, "alice", req.Sender.Username)
	})

	t.Run("malformed json", func(t *testing.T) {
		var req QuoteRequest
		err := bind(`{"sender":`, &req)
		require.ErrorIs(t, err, ErrBinding)
	})

	t.Run("invalid fields", func(t *testing.T) {
		var req QuoteRequest
		err := bind(`{"sender":{"email":"nope"},"lang":"!!"}`, &req)
		require.ErrorIs(t, err, ErrValidation)
		assert.True(t, IsValidationError(err))

		fields := ValidationErrors(err)
		assert.Equal(t, "must be a valid email address", fields["sender.email"])
		assert.Equal(t, "must be a BCP 47 language tag", fields["lang"])
	})

	t.Run("protocol must be http or https", func(t *testing.T) {
		var req MessageSavedRequest
		err := bind(`{"created":true,"default_protocol":"ftp"}`, &req)
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "must be one of: http https", ValidationErrors(err)["default_protocol"])
	})
}

func TestMinMaxMessage(t *testing.T) {
	type payload struct {
		Name  string `json:"name"  validate:"min=3"`
		Count int    `json:"count" validate:"max=2"`
	}

	err := Validate(payload{Name: "ab", Count: 5})
	fields := ValidationErrors(err)

	assert.Equal(t, "must be at least 3 characters", fields["name"])
	assert.Equal(t, "must be at most 2", fields["count"])
}
