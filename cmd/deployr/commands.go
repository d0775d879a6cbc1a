package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/loykin/deployr"
	"github.com/loykin/deployr/internal/logger"
)

type command struct {
	flags *GlobalFlags
}

func (c command) Pull(ctx context.Context) error { return c.dispatch(ctx, (*deployr.Deployer).Pull) }
func (c command) Push(ctx context.Context) error { return c.dispatch(ctx, (*deployr.Deployer).Push) }
func (c command) Restart(ctx context.Context) error { return c.dispatch(ctx, (*deployr.Deployer).Restart) }
func (c command) Deploy(ctx context.Context) error { return c.dispatch(ctx, (*deployr.Deployer).Deploy) }
func (c command) Cleanup(ctx context.Context) error { return c.dispatch(ctx, (*deployr.Deployer).Cleanup) }

// dispatch builds a deployer from config and flags, runs one action,
// and tears the auxiliary writers down again.
func (c command) dispatch(ctx context.Context, action func(*deployr.Deployer, context.Context) error) error {
	cfg, err := resolveConfig(c.flags)
	if err != nil {
		return err
	}

	d := deployr.New(cfg)

	var closers []io.Closer
	defer func() {
		for _, cl := range closers {
			_ = cl.Close()
		}
	}()

	if w := logger.Writer(cfg.Log); w != nil {
		closers = append(closers, w)
		d.SetOutput(io.MultiWriter(os.Stdout, w))
	}

	if cfg.History != nil && cfg.History.Enabled {
		sink, err := deployr.NewHistorySink(cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("open history sink: %w", err)
		}
		closers = append(closers, sink)
		d.SetHistorySink(sink)
	}

	return action(d, ctx)
}

// History prints the most recent deployment events, newest first.
func (c command) History(ctx context.Context, limit int) error {
	cfg, err := resolveConfig(c.flags)
	if err != nil {
		return err
	}
	if cfg.History == nil || !cfg.History.Enabled {
		return errors.New("history is not enabled; set [history] enabled and dsn in the config")
	}

	sink, err := deployr.NewHistorySink(cfg.History.DSN)
	if err != nil {
		return fmt.Errorf("open history sink: %w", err)
	}
	defer func() { _ = sink.Close() }()

	q, ok := sink.(deployr.HistoryQuerier)
	if !ok {
		return errors.New("configured history backend cannot be queried")
	}
	events, err := q.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("no deployment history")
		return nil
	}
	for _, e := range events {
		status := "ok"
		if !e.OK {
			status = "failed: " + e.Error
		}
		fmt.Printf("%s  %-8s %-12s %8s  %s\n",
			e.OccurredAt.Local().Format("2006-01-02 15:04:05"),
			e.Action, e.Host, e.Duration.Round(10*time.Millisecond), status)
	}
	return nil
}
