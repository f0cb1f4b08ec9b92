package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmcdole/cinelist/internal/domain"
)

func TestSelectMode(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		want       domain.Mode
	}{
		{"empty", "", domain.ModeGuest},
		{"whitespace", "   ", domain.ModeGuest},
		{"token", "abc.def.ghi", domain.ModeAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectMode(tt.credential))
		})
	}
}

func TestSession_ModeFollowsCredential(t *testing.T) {
	s := New("", "")
	assert.Equal(t, domain.ModeGuest, s.Snapshot().Mode)

	changed := s.Set("tok", "ana")
	assert.True(t, changed)
	assert.Equal(t, domain.ModeAuthenticated, s.Snapshot().Mode)

	changed = s.Clear()
	assert.True(t, changed)
	assert.Equal(t, domain.ModeGuest, s.Snapshot().Mode)
}

func TestSession_SetSameUserIsNotAChange(t *testing.T) {
	s := New("tok-1", "ana")

	// Token refresh for the same user keeps mode and scope
	assert.False(t, s.Set("tok-2", "ana"))
	assert.True(t, s.Set("tok-3", "bo"))
}

func TestSnapshot_Scope(t *testing.T) {
	assert.Equal(t, "guest", Snapshot{Mode: domain.ModeGuest, Username: "ignored"}.Scope())
	assert.Equal(t, "user:ana", Snapshot{Mode: domain.ModeAuthenticated, Token: "t", Username: "ana"}.Scope())

	anon := Snapshot{Mode: domain.ModeAuthenticated, Token: "t"}.Scope()
	assert.Contains(t, anon, "token:")
	assert.NotEqual(t, anon, Snapshot{Mode: domain.ModeAuthenticated, Token: "u"}.Scope())
}
