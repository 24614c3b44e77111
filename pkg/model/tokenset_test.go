package model

import "testing"

func TestSkillSet_HasSkillAfterAdd(t *testing.T) {
	s := NewSkillSet([]string{"Nurse", "ICU"})
	if !s.HasSkill("Nurse") {
		t.Error("expected Nurse to be present")
	}
	if !s.HasSkill("ICU") {
		t.Error("expected ICU to be present")
	}
	if s.HasSkill("Surgeon") {
		t.Error("did not expect Surgeon to be present")
	}
}

func TestSkillSet_EmptySet(t *testing.T) {
	var s SkillSet
	if s.HasSkill("Nurse") {
		t.Error("empty set should not report any skill present")
	}
}

func TestInternSkill_StableAcrossCalls(t *testing.T) {
	t1 := InternSkill("Cardiology")
	t2 := InternSkill("Cardiology")
	if t1 != t2 {
		t.Errorf("expected same token for repeated interning, got %d and %d", t1, t2)
	}
	if SkillName(t1) != "Cardiology" {
		t.Errorf("expected SkillName to round-trip, got %q", SkillName(t1))
	}
}

func TestSkillSet_Strings_RoundTrips(t *testing.T) {
	skills := []string{"Radiology", "Pediatrics"}
	s := NewSkillSet(skills)
	out := s.Strings()
	if len(out) != len(skills) {
		t.Fatalf("expected %d skills, got %d: %v", len(skills), len(out), out)
	}
	found := map[string]bool{}
	for _, sk := range out {
		found[sk] = true
	}
	for _, sk := range skills {
		if !found[sk] {
			t.Errorf("expected %q in round-tripped skill list", sk)
		}
	}
}
