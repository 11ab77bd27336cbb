package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/champions-academy/clubgate/internal/clubgate/service"
	"github.com/champions-academy/clubgate/internal/clubgate/store"
)

func TestEffectiveStatus_Precedence(t *testing.T) {
	tests := []struct {
		name      string
		aggregate string
		raw       string
		want      string
	}{
		{"aggregate wins", "suspended", "active", "suspended"},
		{"raw when no aggregate", "", "inactive", "inactive"},
		{"normalised", "  ACTIVE ", "", "active"},
		{"whitespace aggregate falls through", "   ", "suspended", "suspended"},
		{"neither", "", "", service.StatusUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.EffectiveStatus(store.MemberRecord{MemberStatus: tt.aggregate, Status: tt.raw})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsActive_EitherSourceSuffices(t *testing.T) {
	assert.True(t, service.IsActive(store.MemberRecord{MemberStatus: "active", Status: "inactive"}))
	assert.True(t, service.IsActive(store.MemberRecord{MemberStatus: "inactive", Status: "Active"}))
	assert.True(t, service.IsActive(store.MemberRecord{Status: "active"}))
	assert.False(t, service.IsActive(store.MemberRecord{MemberStatus: "suspended", Status: "suspended"}))
	assert.False(t, service.IsActive(store.MemberRecord{}))
}

func TestNormalizeIdentifier(t *testing.T) {
	assert.Equal(t, "04A1B2C3", service.NormalizeIdentifier("  04a1b2c3\n"))
	assert.Equal(t, "", service.NormalizeIdentifier(" \t "))
}
