package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_DifferentContent(t *testing.T) {
	if IDFromContent("alpha") == IDFromContent("beta") {
		t.Error("IDFromContent() produced identical IDs for different content")
	}
}

func TestJobStatus_Active(t *testing.T) {
	tests := []struct {
		status JobStatus
		want   bool
	}{
		{JobPending, true},
		{JobRunning, true},
		{JobCompleted, false},
		{JobFailed, false},
		{JobCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.Active(); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResultStatus_String(t *testing.T) {
	if ResultProcessing.String() != "processing" {
		t.Errorf("unexpected name %q", ResultProcessing.String())
	}
	if ResultStatus(99).String() != "unknown" {
		t.Errorf("unexpected name %q", ResultStatus(99).String())
	}
}
