// Package notify implements the delivery channel variants. Each
// channel type wraps one outbound transport behind the Sender
// capability; new types are added by registering a constructor.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"notifeed/internal/domain"
)

// Sender delivers a single new-entry notification. Implementations
// convert every transport problem into a returned error; they never
// panic across the call boundary.
type Sender interface {
	Send(ctx context.Context, feedName string, entry domain.Entry) error
}

// Constructor builds a Sender from a stored channel row.
type Constructor func(channel domain.Channel, client *http.Client) (Sender, error)

// Registry maps channel type tags to sender constructors. It is
// populated once at startup; the set of types is fixed per build.
type Registry struct {
	constructors map[string]Constructor
	client       *http.Client
}

func NewRegistry(sendTimeout time.Duration) *Registry {
	r := &Registry{
		constructors: make(map[string]Constructor),
		client:       &http.Client{Timeout: sendTimeout},
	}
	r.Register("slack", NewSlack)
	r.Register("discord", NewDiscord)
	r.Register("ntfy", NewNtfy)
	r.Register("amqp", NewAMQP)
	return r
}

func (r *Registry) Register(typ string, ctor Constructor) {
	r.constructors[typ] = ctor
}

// Create instantiates the sender for a channel row based on its stored
// type tag.
func (r *Registry) Create(channel domain.Channel) (Sender, error) {
	ctor, ok := r.constructors[channel.Type]
	if !ok {
		return nil, fmt.Errorf("unknown channel type %q", channel.Type)
	}
	return ctor(channel, r.client)
}

// Types lists the registered type tags, sorted for stable CLI output.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.constructors))
	for typ := range r.constructors {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}
