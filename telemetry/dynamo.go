// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/guregu/dynamo"
)

// TickRecord is one tick's persisted statistics, shaped for DynamoDB the
// way cloud/db/types.go shapes Score and Server: a partition key plus a
// handful of scalar attributes, no nested documents.
type TickRecord struct {
	Run               string `dynamo:"run"`
	Tick              int64  `dynamo:"tick"`
	SeedsEmitted      int    `dynamo:"seedsEmitted"`
	TraversalsAttempted int  `dynamo:"traversalsAttempted"`
	BodiesTraversed   int    `dynamo:"bodiesTraversed"`
	IslandsFound      int    `dynamo:"islandsFound"`
	DuplicateIslands  int    `dynamo:"duplicateIslands"`
	BodiesDeactivated int    `dynamo:"bodiesDeactivated"`
	TTL               int64  `dynamo:"ttl,omitempty"`
}

// HullBuildRecord is one hull build's stats, recorded separately from
// TickRecord since hull builds don't happen every tick.
type HullBuildRecord struct {
	Run        string  `dynamo:"run"`
	Tick       int64   `dynamo:"tick"`
	FaceCount  int     `dynamo:"faceCount"`
	VertexCount int    `dynamo:"vertexCount"`
	Volume     float64 `dynamo:"volume"`
	TTL        int64   `dynamo:"ttl,omitempty"`
}

// Sink is the interface a tick loop reports through. OfflineSink below
// satisfies it with no side effects, for demos and tests that have no
// AWS credentials to hand.
type Sink interface {
	RecordTick(TickRecord) error
	RecordHullBuild(HullBuildRecord) error
}

// OfflineSink discards everything, mirroring the null-object role a
// missing cloud.Cloud plays in mk48's main.go when no stage is
// configured.
type OfflineSink struct{}

func (OfflineSink) RecordTick(TickRecord) error         { return nil }
func (OfflineSink) RecordHullBuild(HullBuildRecord) error { return nil }

// DynamoSink persists tick and hull-build statistics to DynamoDB, one
// table per concern, following DynamoDBDatabase's shape in
// cloud/db/dynamodb.go: a *dynamodb.DynamoDB service client wrapped by
// guregu/dynamo's higher-level Table, named by stage.
type DynamoSink struct {
	svc        *dynamodb.DynamoDB
	db         *dynamo.DB
	ticksTable dynamo.Table
	hullsTable dynamo.Table
}

// NewDynamoSink opens a DynamoSink against the "physgo-<stage>-ticks"
// and "physgo-<stage>-hulls" tables, analogous to NewDynamoDBDatabase's
// "mk48-<stage>-scores"/"mk48-<stage>-servers" naming.
func NewDynamoSink(sess *session.Session, stage string) (*DynamoSink, error) {
	s := &DynamoSink{svc: dynamodb.New(sess)}
	s.db = dynamo.NewFromIface(s.svc)
	s.ticksTable = s.db.Table("physgo-" + stage + "-ticks")
	s.hullsTable = s.db.Table("physgo-" + stage + "-hulls")
	return s, nil
}

func (s *DynamoSink) RecordTick(rec TickRecord) error {
	return s.ticksTable.Put(rec).Run()
}

func (s *DynamoSink) RecordHullBuild(rec HullBuildRecord) error {
	return s.hullsTable.Put(rec).Run()
}

// ReadTicks queries every recorded tick for a run by its "run" partition
// key (Get("run", run).Iter()), following the iterator loop of
// DynamoDBDatabase.ReadScores.
func (s *DynamoSink) ReadTicks(run string) (records []TickRecord, err error) {
	query := s.ticksTable.Get("run", run).Iter()
	for {
		var rec TickRecord
		if !query.Next(&rec) {
			err = query.Err()
			return
		}
		records = append(records, rec)
	}
}
