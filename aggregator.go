package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/rtm0/snapstack/internal/snap"
	"github.com/rtm0/snapstack/internal/stack"
)

var (
	format = flag.String("format", "jld2", `snapshot file format ("mat" or "jld2")`)
	dir    = flag.String("dir", ".", "directory holding the snapshot files")
	prefix = flag.String("prefix", "", "snapshot filename prefix")
	out    = flag.String("out", "stack.nc", "path of the NetCDF archive to create")
	attrs  = flag.String("attrs", "", "optional TOML file overriding the coordinate attributes")
)

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	f, err := snap.ParseFormat(*format)
	if err != nil {
		logger.Error("Could not resolve snapshot format", "err", err)
		os.Exit(1)
	}

	a := stack.New(logger, f)
	if *attrs != "" {
		if _, err := toml.DecodeFile(*attrs, &a.Attrs); err != nil {
			logger.Error("Could not read attribute config", "err", err)
			os.Exit(1)
		}
	}

	if err := a.Run(*dir, *prefix, *out); err != nil {
		logger.Error("Aggregation failed", "err", err)
		os.Exit(1)
	}
}
