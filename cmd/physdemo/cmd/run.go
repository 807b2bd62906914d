// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package cmd

import (
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/spf13/cobra"

	"github.com/SunGuangdong/physgo/deactivation"
	"github.com/SunGuangdong/physgo/dispatch"
	"github.com/SunGuangdong/physgo/handles"
	"github.com/SunGuangdong/physgo/hull"
	"github.com/SunGuangdong/physgo/procgen"
	"github.com/SunGuangdong/physgo/telemetry"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build a synthetic scene and tick the deactivator against it",
	Long: `run builds cfg.World.ChainCount independent constraint chains, ticks the
deactivator cfg.Runtime.Ticks times, builds a convex hull over a
procedurally generated rock point cloud, and reports the resulting
statistics.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	runID, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("failed to allocate run id: %w", err)
	}

	sink, archive := buildTelemetrySinks()

	b, s := buildScene(cfg.World)
	disp := dispatch.New(cfg.Runtime.WorkerCount, 256, 256)

	d := deactivation.New()
	d.TestedFractionPerFrame = float32(cfg.Runtime.TestedFractionPerFrame)
	d.TargetDeactivatedFraction = float32(cfg.Runtime.TargetDeactivatedFraction)
	d.TargetTraversedFraction = float32(cfg.Runtime.TargetTraversedFraction)

	for tick := 0; tick < cfg.Runtime.Ticks; tick++ {
		report := d.Update(disp, b, s, cfg.Runtime.Deterministic)
		var removed []handles.BodyIndex
		for _, island := range report.AcceptedIslands {
			removed = append(removed, island.OriginalBodyIndices...)
		}
		b.RemoveFromActive(removed)

		fmt.Printf("tick %d: seeds=%d traversed=%d islands=%d duplicates=%d deactivated=%d active=%d\n",
			tick, report.SeedsEmitted, report.BodiesTraversed, report.IslandsFound,
			report.DuplicateIslands, report.BodiesDeactivated, b.ActiveSet().Count())

		if err := sink.RecordTick(telemetry.TickRecord{
			Run:                 runID.String(),
			Tick:                int64(tick),
			SeedsEmitted:        report.SeedsEmitted,
			TraversalsAttempted: report.TraversalsAttempted,
			BodiesTraversed:     report.BodiesTraversed,
			IslandsFound:        report.IslandsFound,
			DuplicateIslands:    report.DuplicateIslands,
			BodiesDeactivated:   report.BodiesDeactivated,
		}); err != nil {
			fmt.Println("telemetry sink error:", err)
		}

		snap := telemetry.NewTickSnapshot(uint64(tick), report, nil)
		if data, err := telemetry.MarshalSnapshot(snap); err == nil {
			if err := archive.UploadSnapshot(runID.String(), int64(tick), data); err != nil {
				fmt.Println("telemetry archive error:", err)
			}
		}
	}

	if cfg.World.RockPoints > 0 {
		rock := procgen.NewRockGenerator(cfg.World.Seed).Generate(cfg.World.RockPoints, float32(cfg.World.RockRadius))
		hullData := hull.ComputeHull(rock)
		ch := hull.ProcessHull(rock, hullData)
		fmt.Printf("hull: points=%d faces=%d vertices=%d volume=%.3f\n",
			len(rock), hullData.FaceCount(), len(hullData.OriginalVertexMapping), ch.Volume())

		if err := sink.RecordHullBuild(telemetry.HullBuildRecord{
			Run:         runID.String(),
			Tick:        int64(cfg.Runtime.Ticks),
			FaceCount:   hullData.FaceCount(),
			VertexCount: len(hullData.OriginalVertexMapping),
			Volume:      float64(ch.Volume()),
		}); err != nil {
			fmt.Println("telemetry sink error:", err)
		}
	}

	return nil
}

// buildTelemetrySinks returns offline sinks unless cfg.Telemetry.Stage
// names a deployment stage, mirroring mk48's main.go pattern of only
// constructing a cloud.Cloud when a stage flag is set.
func buildTelemetrySinks() (telemetry.Sink, telemetry.Archive) {
	if cfg.Telemetry.Stage == "" {
		return telemetry.OfflineSink{}, telemetry.OfflineArchive{}
	}

	sess, err := newAWSSession()
	if err != nil {
		fmt.Println("failed to start AWS session, falling back to offline telemetry:", err)
		return telemetry.OfflineSink{}, telemetry.OfflineArchive{}
	}

	sink, err := telemetry.NewDynamoSink(sess, cfg.Telemetry.Stage)
	if err != nil {
		fmt.Println("failed to open dynamo sink, falling back to offline:", err)
		return telemetry.OfflineSink{}, telemetry.OfflineArchive{}
	}
	archive, err := telemetry.NewS3Archive(sess, cfg.Telemetry.Stage)
	if err != nil {
		fmt.Println("failed to open s3 archive, falling back to offline:", err)
		return sink, telemetry.OfflineArchive{}
	}
	return sink, archive
}
