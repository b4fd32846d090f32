package symptoms

import (
	"reflect"
	"testing"
)

func TestAnnotate(t *testing.T) {
	tests := []struct {
		name         string
		message      string
		wantKinds    []string
		wantSeverity string
		wantOnset    string
	}{
		{
			name:         "Two symptoms",
			message:      "my head hurts and I have swelling",
			wantKinds:    []string{"headache", "swelling"},
			wantSeverity: SeverityModerate,
			wantOnset:    "unknown",
		},
		{
			name:         "Severe with onset",
			message:      "Severe back pain since 2 days ago",
			wantKinds:    []string{"back_pain"},
			wantSeverity: SeveritySevere,
			wantOnset:    "2 days ago",
		},
		{
			name:         "Hinglish",
			message:      "aaj thoda sir dard hai",
			wantKinds:    []string{"headache"},
			wantSeverity: SeverityMild,
			wantOnset:    "aaj",
		},
		{
			name:         "No symptoms",
			message:      "what should I eat",
			wantKinds:    []string{},
			wantSeverity: SeverityModerate,
			wantOnset:    "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Annotate(tt.message)
			if !reflect.DeepEqual(got.Kinds, tt.wantKinds) {
				t.Errorf("Kinds = %v, want %v", got.Kinds, tt.wantKinds)
			}
			if got.Severity != tt.wantSeverity {
				t.Errorf("Severity = %q, want %q", got.Severity, tt.wantSeverity)
			}
			if got.Onset != tt.wantOnset {
				t.Errorf("Onset = %q, want %q", got.Onset, tt.wantOnset)
			}
		})
	}
}

func TestAnnotationSummary(t *testing.T) {
	a := Annotation{Kinds: []string{"fever"}, Severity: SeveritySevere, Onset: "today"}
	if got, want := a.Summary(), "severe - fever - onset today"; got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}

	empty := Annotation{Severity: SeverityModerate, Onset: "unknown"}
	if got := empty.Summary(); got != SeverityModerate {
		t.Errorf("Summary() = %q, want %q", got, SeverityModerate)
	}
}
