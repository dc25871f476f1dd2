// Command mappy asks a running mappy server how long it takes to get from a
// position to a destination by every travel mode.
//
//	mappy -lat 33.4484 -lon -112.074 -to "Tempe, AZ"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"mappy/internal/client"
	"mappy/internal/config"
	"mappy/internal/controller"
	"mappy/internal/domain"
	"mappy/internal/geomath"
	"mappy/internal/location"
	"mappy/internal/platform/obs"
	"mappy/internal/services"
	"mappy/internal/view"
)

func main() {
	server := flag.String("server", config.Get("MAPPY_SERVER", "http://localhost:8080"), "mappy server base URL")
	lat := flag.Float64("lat", 0, "your latitude")
	lon := flag.Float64("lon", 0, "your longitude")
	from := flag.String("from", "", "place to start from instead of -lat/-lon")
	to := flag.String("to", "", "destination to search for")
	mode := flag.String("mode", string(domain.DefaultMode), "mode whose route is drawn")
	timeout := flag.Duration("timeout", 30*time.Second, "overall time limit")
	share := flag.Bool("share", false, "print a share link for your position")
	verbose := flag.Bool("v", false, "print map commands and debug logs")
	flag.Parse()

	if err := run(*server, *lat, *lon, *from, *to, *mode, *timeout, *share, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "mappy:", err)
		os.Exit(1)
	}
}

func run(server string, lat, lon float64, from, to, modeName string, timeout time.Duration, share, verbose bool) error {
	if to == "" {
		return errors.New("-to is required")
	}
	mode, err := domain.ParseTravelMode(modeName)
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if verbose {
		if log, err = obs.NewLogger("development", "mappy"); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	api := client.New(server, 10*time.Second, nil)

	start := domain.UserLocation{Coordinate: domain.Coordinate{Lat: lat, Lon: lon}}
	if from != "" {
		dest, err := api.Search(ctx, from)
		if err != nil {
			return fmt.Errorf("resolve -from: %w", err)
		}
		start.Coordinate = dest.Coordinate
	}
	if err := start.Validate(); err != nil {
		return err
	}

	term := newTerminal(os.Stdout, verbose)
	ctl := controller.New(controller.Deps{
		Geocoder: api,
		Reverse:  api,
		Routes:   api,
		Location: location.New(fixedSource{loc: start}, time.Second, time.Second),
		Map:      view.NewScene(term, domain.DefaultTileLayers()),
		Display:  term,
		Logger:   log,
	}, controller.Options{FlyingSpeedKmh: services.DefaultFlyingSpeedKmh})

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ctl.Run(runCtx)
	}()
	defer func() {
		stop()
		<-done
	}()

	ctl.LocationAcquired(start)
	ctl.ModeSelected(mode)
	ctl.SearchSubmitted(to)
	if share {
		ctl.ShareRequested()
	}

	if err := term.wait(ctx); err != nil {
		return fmt.Errorf("waiting for estimates: %w", err)
	}

	snap, err := ctl.Snapshot(ctx)
	if err != nil {
		return err
	}
	return printEstimates(snap)
}

func printEstimates(s controller.Session) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODE\tDISTANCE\tDURATION\t")
	for _, m := range domain.AllModes() {
		est, ok := s.Estimates[m]
		if !ok {
			fmt.Fprintf(tw, "%s\tN/A\tN/A\t\n", m)
			continue
		}
		marker := ""
		if m == s.SelectedMode {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t\n", m, marker,
			geomath.FormatDistance(est.DistanceMeters), geomath.FormatDuration(est.DurationSeconds))
	}
	return tw.Flush()
}
