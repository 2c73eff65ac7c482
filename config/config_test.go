package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"development without secret", Config{Env: "development"}, ""},
		{"production without secret", Config{Env: "production"}, "JWT_SECRET"},
		{"production wildcard origin", Config{Env: "production", JWTSecret: "k", CORSAllowedOrigins: []string{"*"}}, "CORS_ALLOWED_ORIGINS"},
		{"production ok", Config{Env: "production", JWTSecret: "k", CORSAllowedOrigins: []string{"https://admin.clinic.example"}}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
