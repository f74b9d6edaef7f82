// soulctl: command-line control for a running soul server
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/teslashibe/awa-soul/internal/log"
	"github.com/teslashibe/awa-soul/pkg/hostclient"
	"github.com/teslashibe/awa-soul/pkg/protocol"
)

const usage = `usage: soulctl [-server URL] <command> [args]

commands:
  status                 print engine status
  targets                list registered targets
  stats                  print bridge and tick statistics
  state NAME [-now]      request a state
  trigger                toggle between the primary states
  autocycle on|off       enable or disable auto-cycling
  pointer X Y            move the pointer, each in [-1, 1]
  watch                  print events until interrupted
  frames                 print the frame rate until interrupted
`

func main() {
	server := flag.String("server", envOr("SOUL_SERVER", "http://localhost:8090"), "soul server URL")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log.Init(envOr("SOUL_LOG_LEVEL", "warn"))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *server, *timeout, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "soulctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, server string, timeout time.Duration, name string, args []string) error {
	rest := hostclient.New(server, timeout)

	switch name {
	case "status":
		st, err := rest.Status(ctx)
		if err != nil {
			return err
		}
		return printJSON(st)

	case "targets":
		targets, err := rest.Targets(ctx)
		if err != nil {
			return err
		}
		for _, t := range targets {
			fmt.Println(t)
		}
		return nil

	case "stats":
		raw, err := rest.Stats(ctx)
		if err != nil {
			return err
		}
		return printJSON(raw)

	case "watch":
		return watch(ctx, server)

	case "frames":
		return frames(ctx, server)
	}

	cmd, err := parseCommand(name, args)
	if err != nil {
		return err
	}
	res, err := rest.Command(ctx, cmd)
	if err != nil {
		return err
	}
	fmt.Printf("%s (state %s)\n", res.Status, res.State)
	return nil
}

// parseCommand turns a subcommand into a protocol command.
func parseCommand(name string, args []string) (protocol.Command, error) {
	switch name {
	case "state":
		fs := flag.NewFlagSet("state", flag.ContinueOnError)
		now := fs.Bool("now", false, "skip the transition")
		if err := fs.Parse(args); err != nil {
			return protocol.Command{}, err
		}
		if fs.NArg() != 1 {
			return protocol.Command{}, errors.New("state: need exactly one state name")
		}
		return protocol.SetState(fs.Arg(0), *now), nil

	case "trigger":
		return protocol.Trigger(), nil

	case "autocycle":
		if len(args) != 1 {
			return protocol.Command{}, errors.New("autocycle: need on or off")
		}
		switch args[0] {
		case "on", "true", "1":
			return protocol.SetAutoCycle(true), nil
		case "off", "false", "0":
			return protocol.SetAutoCycle(false), nil
		}
		return protocol.Command{}, fmt.Errorf("autocycle: %q is not on or off", args[0])

	case "pointer":
		if len(args) == 1 && args[0] == "leave" {
			return protocol.PointerLeave(), nil
		}
		if len(args) != 2 {
			return protocol.Command{}, errors.New("pointer: need X and Y, or leave")
		}
		x, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return protocol.Command{}, fmt.Errorf("pointer x: %w", err)
		}
		y, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return protocol.Command{}, fmt.Errorf("pointer y: %w", err)
		}
		return protocol.Pointer(x, y), nil
	}
	return protocol.Command{}, fmt.Errorf("unknown command %q", name)
}

func watch(ctx context.Context, server string) error {
	conn, err := hostclient.Dial(ctx, server, log.L())
	if err != nil {
		return err
	}
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-conn.Events():
			if !ok {
				return conn.Err()
			}
			ts := time.UnixMilli(ev.Timestamp).Format("15:04:05.000")
			switch {
			case ev.State != "":
				fmt.Printf("%s %s %s\n", ts, ev.Type, ev.State)
			case ev.Message != "":
				fmt.Printf("%s %s %s\n", ts, ev.Type, ev.Message)
			default:
				fmt.Printf("%s %s\n", ts, ev.Type)
			}
		}
	}
}

func frames(ctx context.Context, server string) error {
	stream, err := hostclient.DialFrames(ctx, server)
	if err != nil {
		return err
	}
	defer stream.Close()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	count, points := 0, 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-stream.Frames():
			if !ok {
				return stream.Err()
			}
			count++
			points = snap.Len()
		case <-ticker.C:
			fmt.Printf("%d frames/s, %d points\n", count, points)
			count = 0
		}
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
