// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-accounts/internal/users/password"
)

// errPolicyViolated makes the command exit non-zero for weak candidates.
var errPolicyViolated = errors.New("password does not meet the policy")

// NewCheckPasswordCmd creates the check-password subcommand.
func NewCheckPasswordCmd() *cobra.Command {
	var minLength, maxLength int

	cmd := &cobra.Command{
		Use:   "check-password <candidate>",
		Short: "Check a candidate password against the policy",
		Long: `Print every policy violation of the candidate, one per line.
Exits non-zero when at least one rule fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy := password.NewPolicy(password.Complexity(), password.Length(minLength, maxLength))

			violations := policy.Validate(args[0])
			if len(violations) == 0 {
				cmd.Println("ok")
				return nil
			}

			for _, violation := range violations {
				cmd.Printf("%s: %s\n", violation.Code, violation.Message)
			}
			return errPolicyViolated
		},
	}

	cmd.Flags().IntVar(&minLength, "min-length", 8, "minimum length in characters")
	cmd.Flags().IntVar(&maxLength, "max-length", 20, "maximum length in characters (0 for no limit)")

	return cmd
}
