// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema holds column-name descriptors for the SQL tables, so queries
// are assembled from one definition instead of scattered string literals.
package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table                   string
	ID                      string
	Email                   string
	FirstName               string
	LastName                string
	Password                string
	EmailVerified           string
	VerificationToken       string
	VerificationSentAt      string
	ResetToken              string
	ResetSentAt             string
	NotifyOnLogin           string
	LastLoginNotificationAt string
	IsActive                string
	TermsAccepted           string
	Newsletter              string
	DateJoined              string
	LastLoginAt             string

	// Index names, used to classify unique violations.
	EmailKey             string
	VerificationTokenKey string
	ResetTokenKey        string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:                   "users.account",
	ID:                      "id",
	Email:                   "email",
	FirstName:               "firstname",
	LastName:                "lastname",
	Password:                "passwordhash",
	EmailVerified:           "emailverified",
	VerificationToken:       "emailverificationtoken",
	VerificationSentAt:      "emailverificationsentat",
	ResetToken:              "passwordresettoken",
	ResetSentAt:             "passwordresetsentat",
	NotifyOnLogin:           "notifyonlogin",
	LastLoginNotificationAt: "lastloginnotificationat",
	IsActive:                "isactive",
	TermsAccepted:           "termsaccepted",
	Newsletter:              "newslettersubscription",
	DateJoined:              "datejoined",
	LastLoginAt:             "lastloginat",

	EmailKey:             "account_email_key",
	VerificationTokenKey: "account_verification_token_key",
	ResetTokenKey:        "account_reset_token_key",
}

// Columns returns all column names in scan order.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.FirstName, t.LastName, t.Password,
		t.EmailVerified, t.VerificationToken, t.VerificationSentAt,
		t.ResetToken, t.ResetSentAt,
		t.NotifyOnLogin, t.LastLoginNotificationAt,
		t.IsActive, t.TermsAccepted, t.Newsletter, t.DateJoined, t.LastLoginAt,
	}
}
