package main

import (
	"os"

	"github.com/alecthomas/kong"
	"go.abhg.dev/teapot/internal/silog"
)

type globalOptions struct {
	Verbose bool `short:"v" help:"Enable debug logging"`
}

type rootCmd struct {
	globalOptions

	Version versionCmd `cmd:"" name:"version" help:"Print version information"`

	Submit   submitCmd   `cmd:"" help:"Preview moving the current stack onto a new base"`
	Confirm  confirmCmd  `cmd:"" help:"Execute the most recently previewed rebase"`
	Cancel   cancelCmd   `cmd:"" help:"Discard the most recently previewed rebase"`
	Continue continueCmd `cmd:"" help:"Resume a rebase after resolving conflicts"`
	Abort    abortCmd    `cmd:"" help:"Abort the in-progress rebase"`
	Skip     skipCmd     `cmd:"" help:"Skip the conflicted branch and resume"`
	Status   statusCmd   `cmd:"" help:"Show the in-progress rebase's status"`

	Complete completeCmd `cmd:"" help:"Generate shell completion scripts"`
}

// AfterApply builds the logger every subcommand's Run method depends
// on. Commands that need a repository open one themselves (the
// teacher's own checkoutCmd.Run does the same, rather than forcing
// every command to pay for a repository it might not need).
func (cmd *rootCmd) AfterApply(kctx *kong.Context) error {
	level := silog.LevelInfo
	if cmd.Verbose {
		level = silog.LevelDebug
	}
	kctx.Bind(silog.New(os.Stderr, &silog.Options{Level: level}))
	return nil
}

var _version = "dev"
