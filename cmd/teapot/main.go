// Command teapot drives the stacked-branch rebase engine from a
// terminal, for manual testing and dogfooding. It is a thin consumer
// of internal/teapot/engine, not part of the engine itself.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"go.abhg.dev/komplete"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	go func() {
		<-sigc
		cancel()
	}()

	var cmd rootCmd
	parser := kong.Must(
		&cmd,
		kong.Name("teapot"),
		kong.Description("teapot manages a stack of rebasing branches."),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.UsageOnError(),
	)

	komplete.Run(parser, komplete.WithPredictor("branches", komplete.PredictFunc(predictBranches)))

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	kctx.FatalIfErrorf(kctx.Run())
}
