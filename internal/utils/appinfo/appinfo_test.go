package appinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvironment(t *testing.T) {
	tests := []struct {
		goEnv, fallback, want string
	}{
		{"", "", "development"},
		{"prod", "", "production"},
		{"Staging", "", "staging"},
		{"", "testing", "test"},
		{"qa", "", "qa"},
	}
	for _, tt := range tests {
		t.Setenv("GO_ENV", tt.goEnv)
		t.Setenv("ENVIRONMENT", tt.fallback)
		assert.Equal(t, tt.want, Environment(), "GO_ENV=%q ENVIRONMENT=%q", tt.goEnv, tt.fallback)
	}
}

func TestVersionFromEnv(t *testing.T) {
	t.Setenv("APP_VERSION", "1.4.2")
	assert.Equal(t, "1.4.2", Version())

	t.Setenv("APP_VERSION", "")
	assert.NotEmpty(t, Version())
}
