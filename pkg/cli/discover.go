package cli

import (
	"context"
	"strings"

	"github.com/m-mizutani/whisker/pkg/model"
	"github.com/m-mizutani/whisker/pkg/usecase/discovery"
	"github.com/urfave/cli/v3"
)

func discoverCommand() *cli.Command {
	var (
		cfg    config
		format string
		bans   []string
	)

	flags := []cli.Flag{
		formatFlag(&format),
		&cli.StringSliceFlag{
			Name:        "ban",
			Aliases:     []string{"b"},
			Usage:       "Exclude breeds matching this name, origin or temperament (repeatable)",
			Sources:     cli.EnvVars("WHISKER_BANS"),
			Destination: &bans,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "discover",
		Usage: "Show one random cat breed that is not banned",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setup(ctx, c)

			banList := model.NewBanList()
			for _, token := range bans {
				if strings.TrimSpace(token) != "" {
					banList.Add(token)
				}
			}

			uc := discovery.New(cfg.newCatAPI())
			catalog, err := uc.LoadCatalog(ctx)
			if err != nil {
				return err
			}

			record, err := uc.SelectNext(ctx, catalog, banList)
			if err != nil {
				return err
			}

			return writeOutput(c.Root().Writer, format, record, func() string {
				return renderCard(record)
			})
		},
	}
}
