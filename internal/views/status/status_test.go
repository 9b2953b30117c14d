package status

import (
	"strings"
	"testing"

	"github.com/warden/console/internal/client"
)

func TestRoleBadge(t *testing.T) {
	tests := map[client.Role]string{
		client.RoleSuperadmin: "SUPERADMIN",
		client.RoleAdmin:      "ADMIN",
		"":                    "",
	}
	for role, want := range tests {
		if got := RoleBadge(role); got != want {
			t.Errorf("RoleBadge(%q) = %q, want %q", role, got, want)
		}
	}
}

func TestViewShowsChannels(t *testing.T) {
	m := New()
	m.Role = client.RoleAdmin
	m.Width = 120
	m.Set(client.KindSecurityEvent, ChannelConnected)
	m.Set(client.KindHealthMetric, ChannelFailed)

	v := m.View()
	for _, want := range []string{"ADMIN", "● events", "✗ health", "· traffic"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewRejectedCount(t *testing.T) {
	m := New()
	m.Width = 120
	if strings.Contains(m.View(), "rejected") {
		t.Error("rejected count should be hidden at zero")
	}
	m.Rejected = 3
	if !strings.Contains(m.View(), "3 rejected") {
		t.Error("view should show the rejected count")
	}
}
