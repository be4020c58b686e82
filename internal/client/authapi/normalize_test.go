package authapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeErrorBody(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "array of validation objects",
			status: 422,
			body:   `[{"loc":["body","password"],"type":"missing"}]`,
			want:   `{"loc":["body","password"],"type":"missing"}`,
		},
		{
			name:   "array of strings",
			status: 400,
			body:   `["username taken","second"]`,
			want:   "username taken",
		},
		{
			name:   "array of numbers",
			status: 400,
			body:   `[7]`,
			want:   "7",
		},
		{
			name:   "empty array",
			status: 400,
			body:   `[]`,
			want:   "Login failed",
		},
		{
			name:   "object with string detail",
			status: 401,
			body:   `{"detail":"Incorrect username or password"}`,
			want:   "Incorrect username or password",
		},
		{
			name:   "object with validation list detail",
			status: 422,
			body:   `{"detail":[{"loc":["body","role"],"msg":"string does not match regex","type":"value_error"}]}`,
			want:   `{"loc":["body","role"],"msg":"string does not match regex","type":"value_error"}`,
		},
		{
			name:   "object with empty detail is serialized",
			status: 400,
			body:   `{"detail":"","code":3}`,
			want:   `{"detail":"","code":3}`,
		},
		{
			name:   "object without detail",
			status: 500,
			body:   `{ "error" : "boom",  "code": 12 }`,
			want:   `{"error":"boom","code":12}`,
		},
		{
			name:   "json string",
			status: 400,
			body:   `"plain message"`,
			want:   "plain message",
		},
		{
			name:   "json null",
			status: 400,
			body:   `null`,
			want:   "Login failed",
		},
		{
			name:   "plain text",
			status: 502,
			body:   "Bad Gateway",
			want:   "Bad Gateway",
		},
		{
			name:   "truncated json is raw text",
			status: 500,
			body:   `{"detail": "oops"`,
			want:   `{"detail": "oops"`,
		},
		{
			name:   "empty body",
			status: 503,
			body:   "",
			want:   "Login failed with status 503",
		},
		{
			name:   "whitespace body",
			status: 500,
			body:   "  \n",
			want:   "Login failed with status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeErrorBody("Login", tt.status, []byte(tt.body))
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "[object Object]")
			assert.NotEmpty(t, got)
		})
	}
}

func TestNormalizeErrorBody_ValidationErrorIsReadable(t *testing.T) {
	got := NormalizeErrorBody("Registration", 422, []byte(`[{"loc":["body","password"],"type":"missing"}]`))

	assert.NotEmpty(t, got)
	assert.Contains(t, got, "missing")
	assert.Contains(t, got, "password")
	assert.NotContains(t, got, "[object Object]")
}
