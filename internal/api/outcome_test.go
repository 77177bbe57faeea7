package api

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		status   int
		expected Outcome
	}{
		{200, OutcomeSuccess},
		{201, OutcomeSuccess},
		{304, OutcomeNoOp},
		{400, OutcomeNoOp},
		{404, OutcomeNoOp},
		{0, OutcomeFatal},
		{204, OutcomeFatal},
		{401, OutcomeFatal},
		{403, OutcomeFatal},
		{429, OutcomeFatal},
		{500, OutcomeFatal},
		{502, OutcomeFatal},
		{-1, OutcomeFatal},
	}

	for _, tt := range tests {
		if got := Classify(tt.status); got != tt.expected {
			t.Errorf("Classify(%d) = %v, want %v", tt.status, got, tt.expected)
		}
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		outcome  Outcome
		expected string
	}{
		{OutcomeSuccess, "success"},
		{OutcomeNoOp, "no-op"},
		{OutcomeFatal, "fatal"},
		{Outcome(99), "fatal"},
	}

	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}
