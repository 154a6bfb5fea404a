package routes

import (
	"context"
	"net/http"
)

const appPath = "/app"

type navigatorKey struct{}

// navigator records where a success callback asked to go during one request.
type navigator struct {
	to string
}

func withNavigator(ctx context.Context) (context.Context, *navigator) {
	nav := &navigator{}
	return context.WithValue(ctx, navigatorKey{}, nav), nav
}

// navigateTo is a form success callback that sends the user to path.
func navigateTo(path string) func(ctx context.Context) {
	return func(ctx context.Context) {
		if nav, ok := ctx.Value(navigatorKey{}).(*navigator); ok {
			nav.to = path
		}
	}
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
