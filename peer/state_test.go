package peer

import "testing"

func TestNewStateInitialValues(t *testing.T) {
	s := NewState()
	if !s.Choked || !s.AmChoked {
		t.Fatalf("expected Choked and AmChoked true initially, got %+v", s)
	}
	if s.Interested || s.AmInterested {
		t.Fatalf("expected Interested and AmInterested false initially, got %+v", s)
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		Waiting:      "Waiting",
		Downloading:  "Downloading",
		Disconnected: "Disconnected",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Fatalf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}
