package resolve

import (
	"errors"
	"testing"

	rterrors "github.com/wippyai/script-runtime/errors"
)

func testChain() *Chain {
	return NewChain(
		NewBuiltin("builtin:"),
		Relative{},
		NewNamespace("Scripts", map[string]string{"game": "Game"}),
		NewAlias(map[string]string{"@lib": "Scripts/lib"}),
		PassThrough{},
	)
}

func TestChainPrecedence(t *testing.T) {
	c := testChain()

	tests := []struct {
		name    string
		parent  string
		request string
		want    string
	}{
		{"builtin passes unchanged", "Scripts/main.js", "builtin:math", "builtin:math"},
		{"relative sibling", "Scripts/main.js", "./util.js", "Scripts/util.js"},
		{"relative parent dir", "Scripts/ui/menu.js", "../core/input.js", "Scripts/core/input.js"},
		{"relative nested down", "Scripts/main.js", "./lib/math.js", "Scripts/lib/math.js"},
		{"namespace mount", "Scripts/main.js", "game:units/tank.js", "Scripts/Game/units/tank.js"},
		{"alias prefix", "Scripts/main.js", "@lib/math", "Scripts/lib/math"},
		{"alias exact", "Scripts/main.js", "@lib", "Scripts/lib"},
		{"pass-through", "Scripts/main.js", "Scripts/other.js", "Scripts/other.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Resolve(tt.parent, tt.request)
			if err != nil {
				t.Fatalf("Resolve(%q, %q) failed: %v", tt.parent, tt.request, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.parent, tt.request, got, tt.want)
			}
		})
	}
}

func TestResolutionIsFixedPoint(t *testing.T) {
	c := testChain()

	for _, id := range []string{
		"Scripts/main.js",
		"Scripts/lib/math.js",
		"Scripts/Game/units/tank.js",
		"builtin:math",
	} {
		resolved, err := c.Resolve("", id)
		if err != nil {
			t.Fatalf("resolving canonical id %q failed: %v", id, err)
		}
		if resolved != id {
			t.Errorf("canonical id %q re-resolved to %q, want fixed point", id, resolved)
		}
	}
}

func TestRelativeClampsAtRoot(t *testing.T) {
	c := testChain()

	// Parent sits one level deep; three ".." would pop past the root.
	// Policy: clamp, don't error.
	got, err := c.Resolve("Scripts/main.js", "../../../top.js")
	if err != nil {
		t.Fatalf("clamped resolution failed: %v", err)
	}
	if got != "top.js" {
		t.Errorf("clamped resolution = %q, want %q", got, "top.js")
	}
}

func TestRelativeAgainstRootParent(t *testing.T) {
	c := testChain()

	got, err := c.Resolve("main.js", "./b.js")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "b.js" {
		t.Errorf("got %q, want %q", got, "b.js")
	}
}

func TestMalformedRequests(t *testing.T) {
	c := testChain()

	tests := []struct {
		name    string
		parent  string
		request string
	}{
		{"empty request", "Scripts/main.js", ""},
		{"empty builtin name", "Scripts/main.js", "builtin:"},
		{"empty relative segment", "Scripts/main.js", ".//b.js"},
		{"relative to root itself", "Scripts/main.js", ".."},
		{"unknown namespace", "Scripts/main.js", "audio:music.js"},
		{"empty namespace rest", "Scripts/main.js", "game:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Resolve(tt.parent, tt.request)
			if err == nil {
				t.Fatalf("Resolve(%q, %q) succeeded, want error", tt.parent, tt.request)
			}
			var rerr *rterrors.Error
			if !errors.As(err, &rerr) {
				t.Fatalf("expected structured error, got %T", err)
			}
			if rerr.Phase != rterrors.PhaseResolve {
				t.Errorf("phase = %q, want resolve", rerr.Phase)
			}
		})
	}
}

func TestAliasLongestPrefixWins(t *testing.T) {
	a := NewAlias(map[string]string{
		"@lib":      "Scripts/lib",
		"@lib/deep": "Vendored/deep",
	})

	got, claimed, err := a.Resolve("", "@lib/deep/tools.js")
	if err != nil || !claimed {
		t.Fatalf("Resolve failed: claimed=%v err=%v", claimed, err)
	}
	if got != "Vendored/deep/tools.js" {
		t.Errorf("got %q, want longest-prefix target", got)
	}
}

func TestAliasSegmentBoundary(t *testing.T) {
	a := NewAlias(map[string]string{"@lib": "Scripts/lib"})

	_, claimed, err := a.Resolve("", "@libx/math.js")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if claimed {
		t.Error("alias must not match mid-segment")
	}
}

func TestAliasSwapReplacesWholeMap(t *testing.T) {
	a := NewAlias(map[string]string{"@lib": "Scripts/lib"})
	a.Swap(map[string]string{"@core": "Scripts/core"})

	if _, claimed, _ := a.Resolve("", "@lib/math.js"); claimed {
		t.Error("old alias survived the swap")
	}
	got, claimed, _ := a.Resolve("", "@core/init.js")
	if !claimed || got != "Scripts/core/init.js" {
		t.Errorf("new alias not applied: claimed=%v got=%q", claimed, got)
	}
}
