// File: internal/selector/predicate.go
package selector

import (
	"context"
	"fmt"
	"strings"

	"github.com/xkilldash9x/courier-cli/internal/browser"
)

// Predicate disambiguates among the matches of one candidate.
type Predicate struct {
	Name  string
	Match func(ctx context.Context, el browser.Element) (bool, error)
}

func (p Predicate) String() string { return p.Name }

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// TextContains holds when the element's text contains sub, ignoring case.
func TextContains(sub string) Predicate {
	want := normalize(sub)
	return Predicate{
		Name: fmt.Sprintf("text contains %q", sub),
		Match: func(ctx context.Context, el browser.Element) (bool, error) {
			text, err := el.Text(ctx)
			return strings.Contains(normalize(text), want), err
		},
	}
}

// TextEquals holds when the trimmed text equals want, ignoring case.
func TextEquals(want string) Predicate {
	norm := normalize(want)
	return Predicate{
		Name: fmt.Sprintf("text equals %q", want),
		Match: func(ctx context.Context, el browser.Element) (bool, error) {
			text, err := el.Text(ctx)
			return normalize(text) == norm, err
		},
	}
}

// LabelContains holds when the associated label text contains keyword.
func LabelContains(keyword string) Predicate {
	want := normalize(keyword)
	return Predicate{
		Name: fmt.Sprintf("label contains %q", keyword),
		Match: func(ctx context.Context, el browser.Element) (bool, error) {
			label, err := el.LabelText(ctx)
			return strings.Contains(normalize(label), want), err
		},
	}
}

// AttrContains holds when attribute name exists and contains sub, ignoring
// case.
func AttrContains(name, sub string) Predicate {
	want := strings.ToLower(sub)
	return Predicate{
		Name: fmt.Sprintf("%s contains %q", name, sub),
		Match: func(ctx context.Context, el browser.Element) (bool, error) {
			v, ok, err := el.Attribute(ctx, name)
			return ok && strings.Contains(strings.ToLower(v), want), err
		},
	}
}

// MinTextLength holds when the trimmed text is longer than n runes.
func MinTextLength(n int) Predicate {
	return Predicate{
		Name: fmt.Sprintf("text longer than %d", n),
		Match: func(ctx context.Context, el browser.Element) (bool, error) {
			text, err := el.Text(ctx)
			return len([]rune(strings.TrimSpace(text))) > n, err
		},
	}
}

// ExcludeText holds when the text contains none of phrases.
func ExcludeText(phrases ...string) Predicate {
	return Predicate{
		Name: fmt.Sprintf("text excludes %q", phrases),
		Match: func(ctx context.Context, el browser.Element) (bool, error) {
			text, err := el.Text(ctx)
			if err != nil {
				return false, err
			}
			norm := normalize(text)
			for _, p := range phrases {
				if strings.Contains(norm, normalize(p)) {
					return false, nil
				}
			}
			return true, nil
		},
	}
}

// Enabled holds when the element accepts input.
func Enabled() Predicate {
	return Predicate{
		Name: "enabled",
		Match: func(ctx context.Context, el browser.Element) (bool, error) {
			return el.Enabled(ctx)
		},
	}
}

// All holds when every one of preds holds.
func All(preds ...Predicate) Predicate {
	names := make([]string, len(preds))
	for i, p := range preds {
		names[i] = p.Name
	}
	return Predicate{
		Name: "(" + strings.Join(names, " and ") + ")",
		Match: func(ctx context.Context, el browser.Element) (bool, error) {
			for _, p := range preds {
				ok, err := p.Match(ctx, el)
				if err != nil || !ok {
					return false, err
				}
			}
			return true, nil
		},
	}
}

// AnyOf holds when at least one of preds holds.
func AnyOf(preds ...Predicate) Predicate {
	names := make([]string, len(preds))
	for i, p := range preds {
		names[i] = p.Name
	}
	return Predicate{
		Name: "(" + strings.Join(names, " or ") + ")",
		Match: func(ctx context.Context, el browser.Element) (bool, error) {
			for _, p := range preds {
				ok, err := p.Match(ctx, el)
				if err != nil {
					return false, err
				}
				if ok {
					return true, nil
				}
			}
			return false, nil
		},
	}
}
