/*
Package authsdk is the Go client for the hospital authentication service
and the home of the wire types and error bodies the service writes.

# Client vs Session

  - Client performs single calls: Login, Refresh, Validate, Me, Logout.
  - Session holds a token pair and rotates it shortly before the access
    token expires, so callers only ever ask it for a usable token.

	client := authsdk.NewClient("https://auth.hospital.local")

	sess, err := client.Authenticate(ctx, "admin@example.org", "admin123")
	if err != nil {
		var apiErr *authsdk.APIError
		if errors.As(err, &apiErr) && apiErr.Code == authsdk.CodeInvalidCredentials {
			// wrong identifier or password
		}
		return err
	}

	me, err := sess.Me(ctx)

# Errors

All non-2xx responses decode into *APIError carrying the HTTP status and
the service's {code, message} body. 401 codes mean "log in again"; 403
FORBIDDEN means the caller is authenticated but lacks permission.
*/
package authsdk
