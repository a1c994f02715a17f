// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// Principal identifies the account behind an authenticated request.
//
// It is resolved from the session cookie by the authentication middleware and
// stored in the request context.
type Principal struct {
	AccountID  string
	SessionID  string
	Persistent bool
}
