package core

import "testing"

func TestLeadPayloadValidate(t *testing.T) {
	if err := (LeadPayload{}).Validate(); err == nil {
		t.Fatalf("expected missing correlation id error")
	}
	if err := (LeadPayload{CorrelationID: "   "}).Validate(); err == nil {
		t.Fatalf("expected blank correlation id error")
	}
	if err := (LeadPayload{CorrelationID: "lead-001"}).Validate(); err != nil {
		t.Fatalf("expected valid payload: %v", err)
	}
}

func TestLeadPayloadContactName(t *testing.T) {
	cases := []struct {
		first string
		last  string
		want  string
	}{
		{"Pat", "Jones", "Pat Jones"},
		{"Pat", "", "Pat"},
		{"", "Jones", "Jones"},
		{"  ", "", "there"},
	}
	for _, tc := range cases {
		got := LeadPayload{FirstName: tc.first, LastName: tc.last}.ContactName()
		if got != tc.want {
			t.Fatalf("contact name for %q %q: expected %q, got %q", tc.first, tc.last, tc.want, got)
		}
	}
}
