// Package loop runs a standalone game against a private, in-process hub.
package loop

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/tomz197/sshtris/internal/hub"
	"github.com/tomz197/sshtris/internal/loop/client"
)

// Run plays one local game on r and w until the player quits or ctx is
// cancelled. The leaderboard lives only as long as the call.
func Run(ctx context.Context, r io.ByteReader, w io.Writer, opts client.ClientOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lobby := hub.New(logger)
	go lobby.Run(ctx)

	c := client.NewClient(lobby, r, w, opts)
	return c.Run(ctx)
}
