// Package variables resolves scripted variables: `@name` tokens whose values
// come from declarations in the enclosing clauses, the same file, or the
// variable files of every loaded content source.
package variables

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCycle         = errors.New("cyclic scripted variable reference")
	ErrDepthExceeded = errors.New("scripted variable chain too deep")
)

// ResolutionError is returned when a variable chain does not terminate.
// Chain lists every token visited, starting with Token.
type ResolutionError struct {
	Token string
	Chain []string
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v: %s", e.Token, e.Err, strings.Join(e.Chain, " -> "))
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Resolver answers the effective value of a token. Tokens that are not
// variable references, or that the resolver does not know, come back
// unchanged with a nil error.
type Resolver interface {
	Resolve(token string) (string, error)
}

// IsReference reports whether token names a scripted variable.
func IsReference(token string) bool {
	return len(token) > 1 && token[0] == '@'
}

type passthrough struct{}

func (passthrough) Resolve(token string) (string, error) { return token, nil }

// Passthrough resolves nothing. Nodes without a scope use it.
var Passthrough Resolver = passthrough{}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(token string) (string, error)

func (f ResolverFunc) Resolve(token string) (string, error) { return f(token) }

// Delegate asks primary first and consults fallback only when primary
// returned the token unchanged.
func Delegate(primary, fallback Resolver) Resolver {
	return ResolverFunc(func(token string) (string, error) {
		v, err := primary.Resolve(token)
		if err != nil {
			return token, err
		}
		if v != token {
			return v, nil
		}
		return fallback.Resolve(token)
	})
}

// Lookup resolves token for a consumer that cannot stop on failure: on
// error it returns the token itself together with the error, and reports
// the failure when r carries a Reporter.
func Lookup(r Resolver, token string) (string, error) {
	if r == nil {
		return token, nil
	}
	v, err := r.Resolve(token)
	if err == nil {
		return v, nil
	}
	if rr, ok := r.(interface{ Reporter() *Reporter }); ok {
		rr.Reporter().Report(token, err)
	}
	return token, err
}
