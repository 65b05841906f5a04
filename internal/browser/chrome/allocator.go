package chrome

import (
	"sort"
	"strings"

	"github.com/chromedp/chromedp"
)

// Options configures the Chrome process.
type Options struct {
	Headless bool
	// ExecPath overrides Chrome discovery when set.
	ExecPath string
	// Args are extra command line switches, "name" or "name=value", with or
	// without leading dashes.
	Args []string
}

// flags renders Options as Chrome switches.
func (o Options) flags() map[string]any {
	f := map[string]any{
		"no-sandbox":               true,
		"disable-gpu":              true,
		"no-first-run":             true,
		"no-default-browser-check": true,
		"start-maximized":          true,
	}
	if o.Headless {
		f["headless"] = true
		f["hide-scrollbars"] = true
		f["mute-audio"] = true
	}
	for _, arg := range o.Args {
		arg = strings.TrimLeft(arg, "-")
		if arg == "" {
			continue
		}
		if key, value, found := strings.Cut(arg, "="); found {
			f[key] = value
		} else {
			f[arg] = true
		}
	}
	return f
}

// AllocatorOptions builds the exec allocator options for o.
func AllocatorOptions(o Options) []chromedp.ExecAllocatorOption {
	flags := o.flags()
	keys := make([]string, 0, len(flags))
	for k := range flags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	opts := make([]chromedp.ExecAllocatorOption, 0, len(keys)+1)
	for _, k := range keys {
		opts = append(opts, chromedp.Flag(k, flags[k]))
	}
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}
	return opts
}
