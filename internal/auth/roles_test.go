package auth

import "testing"

func TestRoleAtLeast(t *testing.T) {
	cases := []struct {
		have, min Role
		want      bool
	}{
		{RoleStaff, RoleStaff, true},
		{RoleStaff, RoleSupervisor, false},
		{RoleManager, RoleSupervisor, true},
		{RoleAdmin, RoleSuperAdmin, false},
		{RoleSuperAdmin, RoleAdmin, true},
		{Role("GUEST"), RoleStaff, false},
		{RoleAdmin, Role("GUEST"), false},
	}
	for _, tc := range cases {
		if got := tc.have.AtLeast(tc.min); got != tc.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", tc.have, tc.min, got, tc.want)
		}
	}
}

func TestRoleOrderIsTotal(t *testing.T) {
	roles := Roles()
	for i := range roles {
		for j := range roles {
			if roles[i].AtLeast(roles[j]) != (i >= j) {
				t.Fatalf("ordering broken between %s and %s", roles[i], roles[j])
			}
		}
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole(" manager "); !ok || r != RoleManager {
		t.Fatalf("expected MANAGER, got %q ok=%v", r, ok)
	}
	if _, ok := ParseRole("owner"); ok {
		t.Fatal("unknown role should not parse")
	}
}
