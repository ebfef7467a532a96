package models

import "testing"

func TestPasswordMatches(t *testing.T) {
	var pw Password
	if err := pw.Set("Secr3tPass"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ok, err := pw.Matches("Secr3tPass"); err != nil || !ok {
		t.Fatalf("Matches(correct) = %v, %v", ok, err)
	}
	if ok, err := pw.Matches("secr3tpass"); err != nil || ok {
		t.Fatalf("Matches(wrong) = %v, %v", ok, err)
	}
}

func TestValidAddressType(t *testing.T) {
	for _, typ := range []string{AddressHome, AddressWork, AddressOther} {
		if !ValidAddressType(typ) {
			t.Errorf("%q should be valid", typ)
		}
	}
	if ValidAddressType("villa") {
		t.Error("villa should be rejected")
	}
}
