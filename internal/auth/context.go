package auth

import "context"

type merchantIDKey struct{}

func ContextWithMerchantID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, merchantIDKey{}, id)
}

func MerchantIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(merchantIDKey{}).(string)
	return id, ok
}
