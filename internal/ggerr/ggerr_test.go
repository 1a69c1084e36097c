package ggerr

import (
	"errors"
	"testing"
)

func TestExitCode_Mapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitSuccess},
		{"schema", &SchemaError{Path: "p", Message: "m"}, ExitValidation},
		{"checksum", &ChecksumError{Expected: "a", Actual: "b"}, ExitValidation},
		{"signature", &SignatureError{KeyID: "k", Reason: "bad"}, ExitValidation},
		{"referential", &ReferentialError{Kind: "task", From: "a", To: "b"}, ExitValidation},
		{"workflow", &WorkflowError{From: "draft", To: "done"}, ExitWorkflowDenied},
		{"ambiguous actor", &AmbiguousActorError{Candidates: []string{"a", "b"}}, ExitAmbiguousActor},
		{"no remote", ErrNoRemote, ExitOperationalFailure},
		{"no commits", ErrNoCommits, ExitOperationalFailure},
		{"conflict", &ConflictError{Files: []string{"x"}}, ExitOperationalFailure},
		{"io", Wrap(errors.New("disk full")), ExitOperationalFailure},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestWrap_Nil(t *testing.T) {
	if Wrap(nil) != nil {
		t.Fatalf("Wrap(nil) should be nil")
	}
}

func TestIoError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause)
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is should see through IoError to cause")
	}
}

func TestWorkflowError_Message(t *testing.T) {
	err := &WorkflowError{From: "review", To: "archived", MissingRoles: []string{"reviewer"}}
	msg := err.Error()
	if msg == "" {
		t.Fatalf("expected non-empty message")
	}
}
