// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/SunGuangdong/physgo/deactivation"
	"github.com/SunGuangdong/physgo/dispatch"
	"github.com/SunGuangdong/physgo/handles"
	"github.com/SunGuangdong/physgo/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Tick the deactivator continuously, streaming snapshots over a live feed",
	Long: `serve runs the same scene as run but in a continuous loop, broadcasting a
TickSnapshot after every tick to any client connected to the websocket
live feed, following ServeSocket's upgrade-then-register shape in
http.go generalized from a game client to a telemetry viewer.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	b, s := buildScene(cfg.World)
	disp := dispatch.New(cfg.Runtime.WorkerCount, 256, 256)

	d := deactivation.New()
	d.TestedFractionPerFrame = float32(cfg.Runtime.TestedFractionPerFrame)
	d.TargetDeactivatedFraction = float32(cfg.Runtime.TargetDeactivatedFraction)
	d.TargetTraversedFraction = float32(cfg.Runtime.TargetTraversedFraction)

	feed := telemetry.NewLiveFeed()
	mux := http.NewServeMux()
	mux.HandleFunc("/feed", feed.ServeHTTP)

	fmt.Println("live feed listening on", cfg.Telemetry.LiveFeedAddr, "path /feed")
	go func() {
		if err := http.ListenAndServe(cfg.Telemetry.LiveFeedAddr, mux); err != nil {
			fmt.Println("live feed server error:", err)
		}
	}()

	var tick uint64
	for {
		report := d.Update(disp, b, s, cfg.Runtime.Deterministic)
		var removed []handles.BodyIndex
		for _, island := range report.AcceptedIslands {
			removed = append(removed, island.OriginalBodyIndices...)
		}
		b.RemoveFromActive(removed)
		feed.Broadcast(telemetry.NewTickSnapshot(tick, report, nil))
		tick++
		if b.ActiveSet().Count() == 0 {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	fmt.Println("scene fully deactivated after", tick, "ticks")
	return nil
}
