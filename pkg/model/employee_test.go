package model

import "testing"

func TestNewEmployee_HasSkillAndSeniority(t *testing.T) {
	e := NewEmployee("emp1", "张三", "Nurse", []string{"ICU", "Trauma", "Senior"}, 45, 40, 20)

	if !e.HasSkill("ICU") {
		t.Error("expected employee to have ICU skill")
	}
	if e.HasSkill("Pediatrics") {
		t.Error("did not expect employee to have Pediatrics skill")
	}
	if !e.IsSenior() {
		t.Error("expected the Senior skill tag to report IsSenior true, regardless of role")
	}
	if e.IsJunior() {
		t.Error("did not expect employee without the Junior tag to report IsJunior true")
	}
}

func TestEmployee_IsSenior_FalseWithoutSkillTag(t *testing.T) {
	e := NewEmployee("emp2", "李四", "Nurse", []string{"RN", "Junior"}, 30, 40, 20)
	if e.IsSenior() {
		t.Error("expected employee without the Senior tag to not be senior")
	}
	if !e.IsJunior() {
		t.Error("expected the Junior skill tag to report IsJunior true")
	}
}

func TestEmployee_SkillSet_LazilyBuiltFromRawSkills(t *testing.T) {
	e := &Employee{EmployeeID: "emp3", Skills: []string{"Nurse"}}
	if !e.HasSkill("Nurse") {
		t.Error("expected lazily-built skill set to recognize raw Skills field")
	}
}
