/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Command jacobin is the CLI launcher (spec §2, ambient per SPEC_FULL.md
// "CLI launcher"): parse a classpath, a main class name, and program
// arguments, then hand off to src/vm.
package main

import (
	"github.com/spf13/cobra"

	"jacobin/config"
	"jacobin/shutdown"
	"jacobin/vm"
)

var rootCmd = &cobra.Command{
	Use:   "jacobin <main-class> [args...]",
	Short: "jacobin is a from-scratch Java Virtual Machine",
	Long:  "jacobin loads, links, and interprets JVM class files without a reference JVM installed.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  run,
}

// resolveSettings is bound to rootCmd's flags in init(), before Execute()
// parses argv, matching config.Flags' "define now, resolve after Parse"
// contract.
var resolveSettings func() config.Settings

func init() {
	resolveSettings = config.Flags(rootCmd.Flags())
}

func run(cmd *cobra.Command, args []string) error {
	settings := resolveSettings()
	mainClass := args[0]
	programArgs := args[1:]

	code := vm.Run(settings, mainClass, programArgs)
	if code != shutdown.OK {
		shutdown.Exit(code)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		shutdown.Exit(shutdown.APP_EXCEPTION)
	}
}
