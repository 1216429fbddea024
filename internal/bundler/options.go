package bundler

import "strings"

// Words accepted as positional arguments.
const (
	WordAutoinstall = "autoinstall"
	WordLocal       = "local"
	WordRbenv       = "rbenv"
)

// Options selects what happens when gems are missing.
type Options struct {
	// Autoinstall runs `bundle install` instead of only advising it.
	Autoinstall bool
	// Local tries `bundle install --local` first. Needs Autoinstall.
	Local bool
	// Rbenv runs `rbenv rehash` after installing. Needs Autoinstall.
	Rbenv bool
}

// ParseArgs reads option words from args. Words match exactly and anywhere
// in the list; anything else, including empty strings, is returned in ignored.
func ParseArgs(args []string) (opts Options, ignored []string) {
	for _, arg := range args {
		switch arg {
		case WordAutoinstall:
			opts.Autoinstall = true
		case WordLocal:
			opts.Local = true
		case WordRbenv:
			opts.Rbenv = true
		default:
			ignored = append(ignored, arg)
		}
	}
	return opts, ignored
}

// Merge returns the union of o and other: an option enabled in either is enabled.
func (o Options) Merge(other Options) Options {
	return Options{
		Autoinstall: o.Autoinstall || other.Autoinstall,
		Local:       o.Local || other.Local,
		Rbenv:       o.Rbenv || other.Rbenv,
	}
}

// Args renders the options as positional words, the form git-up passes.
func (o Options) Args() []string {
	var args []string
	if o.Autoinstall {
		args = append(args, WordAutoinstall)
	}
	if o.Local {
		args = append(args, WordLocal)
	}
	if o.Rbenv {
		args = append(args, WordRbenv)
	}
	return args
}

// String implements fmt.Stringer.
func (o Options) String() string {
	if args := o.Args(); len(args) > 0 {
		return strings.Join(args, ",")
	}
	return "none"
}
