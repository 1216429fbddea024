// Package bundler checks whether a project's Gemfile dependencies are
// installed and, when they are not, advises or runs `bundle install`.
//
// A Checker asks a Verifier whether the dependency set is satisfied. When
// the Verifier reports missing gems or a failed git fetch, the Checker prints
// a warning and, with Options.Autoinstall, runs the install commands. Every
// other verification failure is returned to the caller untouched.
package bundler
