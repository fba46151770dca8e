// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"errors"
	"testing"
)

func TestNewPackageIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want PackageIdentity
	}{
		{name: "already canonical", raw: "swift-log", want: "swift-log"},
		{name: "mixed case", raw: "Swift-Log", want: "swift-log"},
		{name: "surrounding whitespace", raw: "  utils \n", want: "utils"},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NewPackageIdentity(tt.raw); got != tt.want {
				t.Errorf("NewPackageIdentity(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPackageIdentityIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		id    PackageIdentity
		valid bool
	}{
		{name: "simple", id: "utils", valid: true},
		{name: "dashed", id: "swift-log", valid: true},
		{name: "dotted", id: "org.example.utils", valid: true},
		{name: "empty", id: "", valid: false},
		{name: "slash", id: "a/b", valid: false},
		{name: "backslash", id: `a\b`, valid: false},
		{name: "space", id: "a b", valid: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			valid, errs := tt.id.IsValid()
			if valid != tt.valid {
				t.Errorf("IsValid() = %v, want %v (errs: %v)", valid, tt.valid, errs)
			}
			if !tt.valid {
				if len(errs) == 0 {
					t.Fatal("expected validation errors, got none")
				}
				if !errors.Is(errs[0], ErrInvalidPackageIdentity) {
					t.Errorf("expected errors.Is(err, ErrInvalidPackageIdentity), got %v", errs[0])
				}
			}
		})
	}
}

func TestToolsVersionIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		v     ToolsVersion
		valid bool
	}{
		{name: "plain", v: "5.7.0", valid: true},
		{name: "short form", v: "5.7", valid: true},
		{name: "prerelease", v: "6.0.0-alpha.1", valid: true},
		{name: "empty", v: "", valid: false},
		{name: "garbage", v: "not-a-version", valid: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			valid, errs := tt.v.IsValid()
			if valid != tt.valid {
				t.Errorf("IsValid() = %v, want %v", valid, tt.valid)
			}
			if !tt.valid && len(errs) > 0 && !errors.Is(errs[0], ErrInvalidToolsVersion) {
				t.Errorf("expected errors.Is(err, ErrInvalidToolsVersion), got %v", errs[0])
			}
		})
	}
}

func TestToolsVersionSupportsModuleAliasing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    ToolsVersion
		want bool
	}{
		{name: "well below minimum", v: "5.5.0", want: false},
		{name: "just below minimum", v: "5.6.9", want: false},
		{name: "exactly minimum", v: "5.7.0", want: true},
		{name: "above minimum", v: "5.9.2", want: true},
		{name: "next major", v: "6.0.0", want: true},
		{name: "default", v: DefaultToolsVersion, want: true},
		{name: "invalid never supports", v: "bogus", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.v.SupportsModuleAliasing(); got != tt.want {
				t.Errorf("ToolsVersion(%q).SupportsModuleAliasing() = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestToolsVersionCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b ToolsVersion
		want int
	}{
		{name: "less", a: "5.6.0", b: "5.7.0", want: -1},
		{name: "equal", a: "5.7.0", b: "5.7.0", want: 0},
		{name: "greater", a: "6.0.0", b: "5.9.9", want: 1},
		{name: "invalid sorts first", a: "bogus", b: "1.0.0", want: -1},
		{name: "both invalid", a: "bogus", b: "also-bogus", want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
