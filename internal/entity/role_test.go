package entity

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw      string
		expected Role
		ok       bool
	}{
		{raw: "seller", expected: RoleSeller, ok: true},
		{raw: "  ADMIN ", expected: RoleAdmin, ok: true},
		{raw: "Customer", expected: RoleCustomer, ok: true},
		{raw: "guest", expected: RoleGuest, ok: true},
		{raw: "super_admin", ok: false},
		{raw: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			role, ok := ParseRole(tt.raw)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if role != tt.expected {
				t.Fatalf("expected role %q, got %q", tt.expected, role)
			}
		})
	}
}

func TestRoleIn(t *testing.T) {
	if !RoleSeller.In(RoleSeller, RoleAdmin) {
		t.Fatal("seller should be allowed")
	}
	if RoleCustomer.In(RoleSeller, RoleAdmin) {
		t.Fatal("customer should not be allowed")
	}
	if RoleAdmin.In() {
		t.Fatal("empty allow-list should reject every role")
	}
}
