package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginPortalAllows(t *testing.T) {
	cases := []struct {
		name  string
		user  *User
		admin bool
		staff bool
		want  LoginPortal
	}{
		{name: "staff", user: &User{Role: RoleStaff}, staff: true, want: PortalStaff},
		{name: "admin", user: &User{Role: RoleAdmin}, admin: true, want: PortalAdmin},
		{name: "superuser with staff role", user: &User{Role: RoleStaff, IsSuperuser: true}, admin: true, want: PortalAdmin},
		{name: "superuser with admin role", user: &User{Role: RoleAdmin, IsSuperuser: true}, admin: true, want: PortalAdmin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.admin, PortalAdmin.Allows(tc.user))
			assert.Equal(t, tc.staff, PortalStaff.Allows(tc.user))
			assert.Equal(t, tc.want, PortalFor(tc.user))
			assert.True(t, PortalFor(tc.user).Allows(tc.user))
		})
	}
	assert.False(t, LoginPortal("parent").Allows(&User{Role: RoleStaff}))
}
