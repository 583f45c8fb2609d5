package cli

import (
	"testing"

	"github.com/matzehuels/bracketview/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,pdf,dot", []string{"svg", "pdf", "dot"}},
		{"spaces trimmed", "svg, json", []string{"svg", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		arg     string
		vizType string
		want    string
	}{
		{"championship id", "", "42", pipeline.VizTypeBoard, "championship-42"},
		{"match file", "", "data/cup.json", pipeline.VizTypeBoard, "cup"},
		{"nodelink suffix", "", "42", pipeline.VizTypeNodelink, "championship-42_nodelink"},
		{"output with format ext", "out/cup.svg", "42", pipeline.VizTypeBoard, "out/cup"},
		{"output without ext", "out/cup", "42", pipeline.VizTypeBoard, "out/cup"},
		{"output with other ext", "out/cup.v2", "42", pipeline.VizTypeBoard, "out/cup.v2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.arg, tt.vizType); got != tt.want {
				t.Errorf("basePath(%q, %q, %q) = %q, want %q", tt.output, tt.arg, tt.vizType, got, tt.want)
			}
		})
	}
}

func TestCompleteList(t *testing.T) {
	complete := completeList([]string{"dot", "png", "svg"})

	got, _ := complete(nil, nil, "")
	if len(got) != 3 {
		t.Errorf("complete(%q) = %v, want all three formats", "", got)
	}

	got, _ = complete(nil, nil, "svg,")
	want := []string{"svg,dot", "svg,png"}
	if len(got) != len(want) {
		t.Fatalf("complete(%q) = %v, want %v", "svg,", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("complete(%q)[%d] = %q, want %q", "svg,", i, got[i], want[i])
		}
	}
}

func TestNeedsConverter(t *testing.T) {
	tests := []struct {
		formats []string
		want    bool
	}{
		{[]string{"svg"}, false},
		{[]string{"svg", "dot", "json"}, false},
		{[]string{"svg", "png"}, true},
		{[]string{"pdf"}, true},
		{nil, false},
	}
	for _, tt := range tests {
		if got := needsConverter(tt.formats); got != tt.want {
			t.Errorf("needsConverter(%v) = %v, want %v", tt.formats, got, tt.want)
		}
	}
}
