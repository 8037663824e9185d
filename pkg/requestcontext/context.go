// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Context keys and getter/setter functions live here so values set by
// middleware can be consumed by services without pulling in net/http. The
// Actor structure replaces ad hoc request augmentation: claims are parsed
// once at the edge and threaded through calls immutably.
package requestcontext

import "context"

// Actor is the immutable claims structure describing who performs an
// operation. Automated actors (the regwatch poller) carry Automated=true so
// audit entries record their origin correctly.
type Actor struct {
	UserID    string
	UserName  string
	Role      string
	Automated bool
}

// ClientMeta captures client connection metadata destined for audit entries.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

type (
	actorKey      struct{}
	requestIDKey  struct{}
	clientMetaKey struct{}
)

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored in ctx. The zero Actor means
// unauthenticated.
func ActorFrom(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorKey{}).(Actor)
	return actor
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WithClientMeta(ctx context.Context, meta ClientMeta) context.Context {
	return context.WithValue(ctx, clientMetaKey{}, meta)
}

func ClientMetaFrom(ctx context.Context) ClientMeta {
	meta, _ := ctx.Value(clientMetaKey{}).(ClientMeta)
	return meta
}
