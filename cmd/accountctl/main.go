// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command accountctl is the operator CLI for the accounts database.
package main

import (
	"os"

	"github.com/taibuivan/yomira-accounts/internal/platform/constants"
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = constants.AppVersion

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
