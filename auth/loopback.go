package auth

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// LoopbackAuthorize runs the installed-app consent flow: the consent URL is
// written to w and the browser is redirected to a one-shot listener on
// 127.0.0.1 that receives the code.
func LoopbackAuthorize(logger *zap.Logger, w io.Writer) AuthorizeFunc {
	return func(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return nil, errors.Wrap(err, "listen for redirect")
		}
		defer ln.Close()

		flow := *cfg
		flow.RedirectURL = "http://" + ln.Addr().String()
		state := uuid.NewString()

		codes := make(chan string, 1)
		failures := make(chan error, 1)
		srv := &http.Server{Handler: http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			switch {
			case q.Get("state") != state:
				http.Error(rw, "state mismatch", http.StatusBadRequest)
				return
			case q.Get("error") != "":
				select {
				case failures <- errors.Errorf("consent denied: %s", q.Get("error")):
				default:
				}
			case q.Get("code") == "":
				http.Error(rw, "missing code", http.StatusBadRequest)
				return
			default:
				select {
				case codes <- q.Get("code"):
				default:
				}
			}
			fmt.Fprintln(rw, "Authorisation finished, you can close this window.")
		})}
		go srv.Serve(ln)
		defer srv.Close()

		url := flow.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
		logger.Info("waiting for authorisation", zap.String("redirect", flow.RedirectURL))
		fmt.Fprintf(w, "Open this URL in a browser to authorise calendar access:\n\n  %s\n\n", url)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case err := <-failures:
			return nil, err
		case code := <-codes:
			tok, err := flow.Exchange(ctx, code)
			return tok, errors.Wrap(err, "exchange code")
		}
	}
}
