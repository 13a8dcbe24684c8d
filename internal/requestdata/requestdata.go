package requestdata

import (
	"context"

	"github.com/google/uuid"
)

var requestDataKey = struct{}{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey)
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

type RequestData struct {
	TokenString string
	UserID      uuid.UUID
	IsAdmin     bool
	Roles       []string
}

func (rd *RequestData) HasRole(role string) bool {
	if rd == nil {
		return false
	}
	for _, r := range rd.Roles {
		if r == role {
			return true
		}
	}
	return false
}
