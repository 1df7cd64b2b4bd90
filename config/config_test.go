package config

import "testing"

func TestActiveBranchesNoAllowedListDefaultsToBranchID(t *testing.T) {
	c := &Config{BranchID: "b1"}
	got := c.ActiveBranches()
	if len(got) != 1 || got[0] != "b1" {
		t.Errorf("ActiveBranches() = %v, want [b1]", got)
	}
}

func TestActiveBranchesIntersectsWithAllowedList(t *testing.T) {
	c := &Config{BranchID: "b1", AllowedBranches: []string{"b1", "b2", "b3"}}
	got := c.ActiveBranches()
	if len(got) != 1 || got[0] != "b1" {
		t.Errorf("ActiveBranches() = %v, want [b1]", got)
	}
}

func TestActiveBranchesBranchIDNotInAllowedList(t *testing.T) {
	c := &Config{BranchID: "b4", AllowedBranches: []string{"b1", "b2", "b3"}}
	got := c.ActiveBranches()
	if got != nil {
		t.Errorf("ActiveBranches() = %v, want nil (branch not permitted)", got)
	}
}

func TestIsDevelopmentAndIsProduction(t *testing.T) {
	dev := &Config{Environment: "development"}
	if !dev.IsDevelopment() || dev.IsProduction() {
		t.Error("expected development environment classified correctly")
	}

	prod := &Config{Environment: "production"}
	if prod.IsDevelopment() || !prod.IsProduction() {
		t.Error("expected production environment classified correctly")
	}
}
