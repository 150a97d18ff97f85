package resolve

import (
	"go.uber.org/zap"

	"github.com/wippyai/script-runtime/errors"
)

// Resolver is one step in the resolution chain. Resolve returns the
// transformed id and claimed=true when this resolver handles the
// request, or claimed=false to pass it to the next step. A resolver
// that claims a request must validate it and return a descriptive
// error on malformed input rather than degrade to pass-through.
type Resolver interface {
	Name() string
	Resolve(parent, request string) (id string, claimed bool, err error)
}

// Chain applies resolvers in fixed precedence order. The final element
// always claims, so Resolve never returns an empty id without an error.
type Chain struct {
	resolvers []Resolver
}

// NewChain builds a chain from the given resolvers, in order. Callers
// are expected to end the chain with PassThrough.
func NewChain(resolvers ...Resolver) *Chain {
	return &Chain{resolvers: resolvers}
}

// Resolve walks the chain until a resolver claims the request.
func (c *Chain) Resolve(parent, request string) (string, error) {
	if request == "" {
		return "", errors.ResolutionFailed(parent, request, "empty request")
	}

	for _, r := range c.resolvers {
		id, claimed, err := r.Resolve(parent, request)
		if err != nil {
			return "", err
		}
		if claimed {
			Logger().Debug("resolved",
				zap.String("resolver", r.Name()),
				zap.String("parent", parent),
				zap.String("request", request),
				zap.String("id", id))
			return id, nil
		}
	}

	// Unreachable with a correctly built chain; report it loudly
	// instead of inventing an id.
	return "", errors.ResolutionFailed(parent, request, "no resolver claimed the request")
}
