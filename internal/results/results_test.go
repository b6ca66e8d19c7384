package results

import (
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func testdataPath(name string) string {
	_, f, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(f), "testdata", name)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		suite string
		want  Shape
	}{
		{"modern with nested results", `{"testFilePath":"a","testResults":[]}`, ShapeModern},
		{"legacy with assertionResults", `{"name":"a","status":"failed","assertionResults":[]}`, ShapeLegacy},
		{"null nested results", `{"testResults":null,"status":"failed"}`, ShapeLegacy},
		{"status alone does not decide", `{"status":"failed","testResults":[{"title":"x"}]}`, ShapeModern},
		{"not an object", `[1,2]`, ShapeLegacy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(json.RawMessage(tt.suite)); got != tt.want {
				t.Errorf("Classify(%s) = %v, want %v", tt.suite, got, tt.want)
			}
		})
	}
}

func TestLoadFile_Modern(t *testing.T) {
	r, err := LoadFile(testdataPath("modern_failing.json"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	mr, ok := r.(*ModernReport)
	if !ok {
		t.Fatalf("want *ModernReport, got %T", r)
	}
	if r.Shape() != ShapeModern {
		t.Errorf("Shape() = %v", r.Shape())
	}
	if r.Totals().Success || r.Totals().NumTotalTests != 6 || r.Totals().NumPendingTests != 1 {
		t.Errorf("unexpected totals: %+v", r.Totals())
	}
	if len(mr.TestResults) != 2 || len(mr.TestResults[0].TestResults) != 4 {
		t.Fatalf("unexpected suites: %+v", mr.TestResults)
	}
	if mr.TestResults[0].TestFilePath != "/repo/src/__tests__/math.test.ts" {
		t.Errorf("TestFilePath = %q", mr.TestResults[0].TestFilePath)
	}
}

func TestLoadFile_Legacy(t *testing.T) {
	r, err := LoadFile(testdataPath("legacy_failing.json"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	lr, ok := r.(*LegacyReport)
	if !ok {
		t.Fatalf("want *LegacyReport, got %T", r)
	}
	if len(lr.TestResults) != 3 || lr.TestResults[0].Status != StatusFailed {
		t.Errorf("unexpected suites: %+v", lr.TestResults)
	}
	if lr.Totals().NumRuntimeErrorTestSuites != 1 {
		t.Errorf("runtime error suites = %d", lr.Totals().NumRuntimeErrorTestSuites)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		is   error
	}{
		{"missing file", testdataPath("nope.json"), fs.ErrNotExist},
		{"truncated json", testdataPath("truncated.json"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsLoadError(err) {
				t.Errorf("want *LoadError, got %T: %v", err, err)
			}
			var le *LoadError
			if errors.As(err, &le) && le.Path != tt.path {
				t.Errorf("LoadError.Path = %q, want %q", le.Path, tt.path)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.is)
			}
		})
	}
}

func TestLoad_FailureWithoutSuitesIsFatal(t *testing.T) {
	_, err := Load([]byte(`{"success": false}`))
	if !errors.Is(err, errNoSuites) {
		t.Errorf("want errNoSuites, got %v", err)
	}
}

func TestLoad_SuccessWithoutSuites(t *testing.T) {
	r, err := Load([]byte(`{"success": true, "numTotalTests": 0}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !r.Totals().Success || r.Shape() != ShapeModern {
		t.Errorf("unexpected report: %+v", r)
	}
}

func TestLoad_EmptySuitesClassifyModern(t *testing.T) {
	r, err := Load([]byte(`{"success": false, "testResults": []}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Shape() != ShapeModern {
		t.Errorf("Shape() = %v, want modern", r.Shape())
	}
	if got := Extract(r, ExtractOptions{WorkDir: "/repo"}); len(got) != 0 {
		t.Errorf("want no failing suites, got %+v", got)
	}
}

func TestExtract_Modern(t *testing.T) {
	r, err := LoadFile(testdataPath("modern_failing.json"))
	if err != nil {
		t.Fatal(err)
	}
	got := Extract(r, ExtractOptions{WorkDir: "/repo", RelativePath: "frontend/"})
	if len(got) != 1 {
		t.Fatalf("want 1 failing suite, got %d", len(got))
	}
	if got[0].Path != "frontend/src/__tests__/math.test.ts" {
		t.Errorf("Path = %q", got[0].Path)
	}
	var titles []string
	for _, a := range got[0].Assertions {
		titles = append(titles, a.Title)
	}
	if diff := cmp.Diff([]string{"adds", "divides"}, titles); diff != "" {
		t.Errorf("failing assertions mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_Legacy(t *testing.T) {
	r, err := LoadFile(testdataPath("legacy_failing.json"))
	if err != nil {
		t.Fatal(err)
	}
	got := Extract(r, ExtractOptions{WorkDir: "/repo/app"})
	want := []FailedSuite{
		{
			Path: "src/__tests__/failingTest.js",
			Assertions: []Assertion{{
				AncestorTitles:  []string{"widget"},
				Title:           "matches snapshot",
				Status:          StatusFailed,
				FailureMessages: []string{"Error: expect(value).toMatchSnapshot()\n\nReceived value does not match stored snapshot 1.\n    at Object.<anonymous> (/repo/app/src/__tests__/failingTest.js:7:3)"},
			}},
		},
		{Path: "src/__tests__/broken.js", Assertions: []Assertion{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_PrefixIsConcatenatedVerbatim(t *testing.T) {
	r := &LegacyReport{TestResults: []LegacySuite{{Name: "/w/a.test.js", Status: StatusFailed}}}
	got := Extract(r, ExtractOptions{WorkDir: "/w", RelativePath: "pkg"})
	if got[0].Path != "pkga.test.js" {
		t.Errorf("Path = %q, want pkga.test.js", got[0].Path)
	}
}

func TestSuites_Durations(t *testing.T) {
	r, err := LoadFile(testdataPath("modern_failing.json"))
	if err != nil {
		t.Fatal(err)
	}
	suites := r.Suites()
	if len(suites) != 2 {
		t.Fatalf("want 2 suites, got %d", len(suites))
	}
	if suites[0].Duration != 1500*time.Millisecond || suites[0].Status != StatusFailed {
		t.Errorf("suite 0 = %+v", suites[0])
	}

	lr, err := LoadFile(testdataPath("legacy_failing.json"))
	if err != nil {
		t.Fatal(err)
	}
	ls := lr.Suites()
	if ls[0].Failed != 1 || ls[0].Passed != 1 || ls[0].Duration != 250*time.Millisecond {
		t.Errorf("legacy suite 0 = %+v", ls[0])
	}
	if ls[2].Duration != 0 {
		t.Errorf("legacy suite without times should have zero duration, got %v", ls[2].Duration)
	}
}

func TestAssertion_FirstMessage(t *testing.T) {
	if got := (Assertion{}).FirstMessage(); got != "" {
		t.Errorf("FirstMessage() on empty = %q", got)
	}
	a := Assertion{FailureMessages: []string{"one", "two"}}
	if got := a.FirstMessage(); got != "one" {
		t.Errorf("FirstMessage() = %q", got)
	}
}
