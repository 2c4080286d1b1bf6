package main

import (
	"github.com/couchcryptid/quake-feed-search/internal/query"
	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var p query.Params

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search feeds with criteria given as flags",
		Long: `Search the feed directory without prompting. Every criterion given is
combined with AND. At least one criterion is required.

Dates accept YYYY, YYYY-MM or YYYY-MM-DD. Times accept HH, HH:MM or HH:MM:SS.
Magnitudes accept an optional operator (=, <, <=, >, >=) and a number.
Buckets accept an operator and a whole number from 0 to 5.`,
		Example: `  quakesearch search --date-from 2025-01-01 --date-to 2025-01-31
  quakesearch search --time-from 08 --time-to 09:30
  quakesearch search --datetime 2025-01-28-12-34
  quakesearch search --magnitude '>=4.5' --place Alaska`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSearch(cmd.Context(), p)
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.DateFrom, "date-from", "", "first day of the date range")
	f.StringVar(&p.DateTo, "date-to", "", "last day of the date range")
	f.StringVar(&p.TimeFrom, "time-from", "", "start of the time-of-day range (UTC)")
	f.StringVar(&p.TimeTo, "time-to", "", "end of the time-of-day range (UTC)")
	f.StringVar(&p.Date, "date", "", "date prefix: YYYY, YYYY-MM or YYYY-MM-DD")
	f.StringVar(&p.Time, "time", "", "time-of-day prefix: HH, HH-MM or HH:MM")
	f.StringVar(&p.DateTime, "datetime", "", "combined date and time prefix: YYYY-MM-DD-HH-MM")
	f.StringVar(&p.Magnitude, "magnitude", "", "magnitude comparison, e.g. 1.5, >2, <=3.0")
	f.StringVar(&p.Bucket, "bucket", "", "magnitude bucket comparison, e.g. >=1, <3, 2")
	f.StringVar(&p.Place, "place", "", "place name, matched exactly and case-insensitively")

	return cmd
}
