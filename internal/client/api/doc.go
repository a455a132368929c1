// Package api is the REST client of the back office.
//
// Every backend call goes through Client.do, which attaches the bearer
// token, waits on the client-side rate limiter, records metrics and
// normalizes any failure into *Error. Callers match failures with
// errors.Is against the sentinels in errors.go and show Message(err) to
// the user.
package api
