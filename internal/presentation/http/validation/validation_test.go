package validation

import (
	"net/url"
	"reflect"
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"ada@example.com", "a.b+c@sub.example.io"}
	invalid := []string{"", "ada", "ada@", "Ada <ada@example.com>", "two@@example.com"}
	for _, e := range valid {
		if !ValidateEmail(e) {
			t.Errorf("%q should be valid", e)
		}
	}
	for _, e := range invalid {
		if ValidateEmail(e) {
			t.Errorf("%q should be invalid", e)
		}
	}
}

func TestValidateFullName(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"A", false},
		{"Al", true},
		{"Zoë", true},
		{"  B  ", false},
		{strings.Repeat("x", 50), true},
		{strings.Repeat("x", 51), false},
	}
	for _, tt := range tests {
		if got := ValidateFullName(tt.in); got != tt.want {
			t.Errorf("ValidateFullName(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidateOTP(t *testing.T) {
	if !ValidateOTP("123456") || ValidateOTP("12345") || ValidateOTP("abcdef") {
		t.Fatal("unexpected OTP validation")
	}
}

func TestValidateFileName(t *testing.T) {
	if !ValidateFileName("report") || ValidateFileName(" ") || ValidateFileName("a/b") || ValidateFileName(`a\b`) {
		t.Fatal("unexpected file name validation")
	}
}

func TestParseListQuery_Defaults(t *testing.T) {
	q, details := ParseListQuery(url.Values{})
	if len(details) != 0 {
		t.Fatalf("unexpected details %v", details)
	}
	if q.Sort != "" || q.Limit != 0 || q.Types != nil {
		t.Errorf("unexpected query %+v", q)
	}
}

func TestParseListQuery_Values(t *testing.T) {
	v := url.Values{}
	v.Set("type", "media")
	v.Set("query", " trip ")
	v.Set("sort", "size-desc")
	v.Set("limit", "10")
	q, details := ParseListQuery(v)
	if len(details) != 0 {
		t.Fatalf("unexpected details %v", details)
	}
	if !reflect.DeepEqual(q.Types, []string{"video", "audio"}) || q.SearchText != "trip" || q.Sort != "size-desc" || q.Limit != 10 {
		t.Errorf("unexpected query %+v", q)
	}
}

func TestParseListQuery_Invalid(t *testing.T) {
	v := url.Values{}
	v.Set("type", "spreadsheets")
	v.Set("types", "image,bogus")
	v.Set("sort", "owner-asc")
	v.Set("limit", "-1")
	_, details := ParseListQuery(v)
	for _, key := range []string{"type", "types", "sort", "limit"} {
		if _, ok := details[key]; !ok {
			t.Errorf("expected %s validation error", key)
		}
	}

	v = url.Values{}
	v.Set("limit", "999999")
	q, details := ParseListQuery(v)
	if q.Limit != MaxListLimit || details["limit"] == nil {
		t.Errorf("limit should be capped with a detail, got %d %v", q.Limit, details)
	}
}

func TestValidateEmails(t *testing.T) {
	if d := ValidateEmails([]string{"a@x.io", " ", "B@X.IO"}); len(d) != 0 {
		t.Errorf("unexpected details %v", d)
	}
	if d := ValidateEmails([]string{"a@x.io", "nope"}); d["emails"] == nil {
		t.Error("expected invalid emails detail")
	}
}

func TestValidatePath(t *testing.T) {
	for _, p := range []string{"", "/", "/documents", "/media?x=1"} {
		if !ValidatePath(p) {
			t.Errorf("%q should be valid", p)
		}
	}
	for _, p := range []string{"documents", "//evil.com", "https://evil.com/"} {
		if ValidatePath(p) {
			t.Errorf("%q should be invalid", p)
		}
	}
}
