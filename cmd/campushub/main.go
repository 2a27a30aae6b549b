// Command campushub serves the anonymous campus confession board.
//
//	@title						Campus Hub Confessions API
//	@version					1.0
//	@description				Anonymous confession board: submissions, replies, likes, flags and moderation.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	AdminToken
//	@in							header
//	@name						X-Admin-Token
package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/campus-hub/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		log.Error().Err(err).Msg("campushub")
		os.Exit(1)
	}
}
