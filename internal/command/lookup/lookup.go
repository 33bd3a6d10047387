package lookup

import (
	"fmt"
	"strings"

	"github.com/bornholm/skimmer/pkg/archive"
	"github.com/bornholm/skimmer/pkg/extract"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const excerptWords = 40

func Lookup() *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "Query an archive of previously scraped pages",
		ArgsUsage: "<terms...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "archive",
				Required:  true,
				Aliases:   []string{"a"},
				EnvVars:   []string{"SKIMMER_ARCHIVE"},
				TakesFile: true,
				Usage:     "path of the bleve archive to query",
			},
			&cli.IntFlag{
				Name:    "limit",
				Value:   5,
				Aliases: []string{"l"},
				EnvVars: []string{"SKIMMER_LOOKUP_LIMIT"},
				Usage:   "maximum number of matches to print",
			},
		},
		Action: func(cliCtx *cli.Context) error {
			terms := strings.TrimSpace(strings.Join(cliCtx.Args().Slice(), " "))
			if terms == "" {
				return errors.New("please specify search terms")
			}

			pageArchive, err := archive.Open(cliCtx.String("archive"))
			if err != nil {
				return errors.WithStack(err)
			}

			defer pageArchive.Close()

			matches, err := pageArchive.Search(terms, cliCtx.Int("limit"))
			if err != nil {
				return errors.Wrapf(err, "failed to search archive")
			}

			if len(matches) == 0 {
				fmt.Println("No matches.")
				return nil
			}

			for i, match := range matches {
				title := match.Title
				if title == "" {
					title = match.URL
				}

				fmt.Printf("%d. %s (%.2f)\n", i+1, title, match.Score)
				fmt.Printf("   %s\n", match.URL)

				if excerpt := extract.TruncateWords(match.Text, excerptWords); excerpt != "" {
					fmt.Printf("   %s...\n", excerpt)
				}

				fmt.Println()
			}

			return nil
		},
	}
}
