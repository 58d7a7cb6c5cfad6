package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/zhouzirui/mind-chat/backend/internal/model/chat"
	"github.com/zhouzirui/mind-chat/backend/pkg/utils"
)

// UserHeader carries the user id resolved by the upstream gateway.
const UserHeader = "X-User-ID"

// DeviceHeader carries an anonymous client's own device id.
const DeviceHeader = "X-Device-ID"

// GuestUser is used for chat when neither a user id nor a device id was supplied.
const GuestUser = chat.GuestUser

const (
	devicePrefix   = "device:"
	maxDeviceIDLen = 128
)

// DeviceUser maps a client-chosen device id to a user id that cannot collide
// with gateway user ids. It returns "" for a blank or oversized id.
func DeviceUser(deviceID string) string {
	id := strings.TrimSpace(deviceID)
	if id == "" || len(id) > maxDeviceIDLen {
		return ""
	}
	return devicePrefix + id
}

type userKey struct{}

// WithUser stores the user id in ctx.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserFrom returns the user id stored by Identify, or "".
func UserFrom(ctx context.Context) string {
	id, _ := ctx.Value(userKey{}).(string)
	return id
}

// Identify 读取 X-User-ID 头并放入请求上下文。
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(UserHeader))
		if id != "" {
			r = r.WithContext(WithUser(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects requests without a user id.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) == "" {
			utils.RespondError(w, http.StatusUnauthorized, "missing "+UserHeader+" header")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GuestFallback identifies anonymous callers by X-Device-ID, and only when
// that is missing too falls back to the shared GuestUser.
func GuestFallback(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) == "" {
			id := DeviceUser(r.Header.Get(DeviceHeader))
			if id == "" {
				id = GuestUser
			}
			r = r.WithContext(WithUser(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
