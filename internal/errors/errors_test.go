package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "E101",
			wantMsg: "Configuration file not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "feed error",
			code:    "E203",
			wantMsg: "Snapshot decode failed",
			wantCat: CategoryFeed,
		},
		{
			name:    "inspect error",
			code:    "E301",
			wantMsg: "Unknown group",
			wantCat: CategoryInspect,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %q is required", "feed")
	if err.Message != `flag "feed" is required` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
	if err.Error() != err.Message {
		t.Errorf("Error() = %q, want message only", err.Error())
	}
}

func TestErrorString(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := New("E202").WithDetail("s3://b/k").Wrap(cause)

	want := "E202: Feed could not be read (s3://b/k): boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := fmt.Errorf("loading: %w", New("E102").Wrap(cause))

	if !stderrors.Is(err, New("E102")) {
		t.Error("expected errors.Is to match by code")
	}
	if stderrors.Is(err, New("E103")) {
		t.Error("different codes must not match")
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the wrapped cause")
	}

	var ve *ViewModelError
	if !stderrors.As(err, &ve) || ve.Code != "E102" {
		t.Errorf("expected errors.As to find E102, got %v", ve)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E202") != nil {
		t.Error("nil error should stay nil")
	}

	original := New("E203")
	if FromError(original, "E202") != original {
		t.Error("a ViewModelError should be returned as is")
	}

	plain := fmt.Errorf("plain")
	wrapped := FromError(plain, "E202")
	if wrapped.Code != "E202" || wrapped.Wrapped != plain {
		t.Errorf("unexpected wrap %+v", wrapped)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E203").
		WithDetail("line 3: unexpected end of JSON input").
		WithSuggestion("Each line must hold one JSON group snapshot")
	out := err.Format()

	for _, want := range []string{
		"ERROR E203: Snapshot decode failed",
		"line 3: unexpected end of JSON input",
		"Hint: Each line must hold one JSON group snapshot",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompactAndJSON(t *testing.T) {
	err := New("E301").WithDetail("id 9").WithSuggestion("apply a snapshot first")

	if got := err.FormatCompact(); got != "E301: Unknown group (id 9)" {
		t.Errorf("FormatCompact() = %q", got)
	}

	want := `{"code":"E301","category":"inspect","message":"Unknown group","detail":"id 9","suggestion":"apply a snapshot first"}`
	if got := err.FormatJSON(); got != want {
		t.Errorf("FormatJSON() = %s, want %s", got, want)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %v", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should produce no lines")
	}
}

func TestLookup(t *testing.T) {
	if _, ok := Lookup("E401"); !ok {
		t.Error("E401 should be registered")
	}
	if _, ok := Lookup("E000"); ok {
		t.Error("E000 should not be registered")
	}
}

func TestHasCode(t *testing.T) {
	inner := New("E203").WithDetail("line 3")
	outer := fmt.Errorf("replay: %w", New("E202").Wrap(inner))

	if !HasCode(outer, "E202") {
		t.Error("HasCode(E202) = false, want true")
	}
	if !HasCode(outer, "E203") {
		t.Error("HasCode(E203) through Wrapped = false, want true")
	}
	if HasCode(outer, "E101") {
		t.Error("HasCode(E101) = true, want false")
	}
	if HasCode(nil, "E101") {
		t.Error("HasCode(nil) = true")
	}
	if HasCode(stderrors.New("plain"), "E101") {
		t.Error("HasCode(plain) = true")
	}
}
