// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"bytes"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Archive is the interface a tick loop uploads snapshot JSON through.
// S3Archive below is the production implementation; OfflineArchive
// discards, for the same reason OfflineSink exists.
type Archive interface {
	UploadSnapshot(run string, tick int64, data []byte) error
}

// OfflineArchive discards every snapshot.
type OfflineArchive struct{}

func (OfflineArchive) UploadSnapshot(string, int64, []byte) error { return nil }

// S3Archive persists tick and hull snapshots to a stage-named static
// bucket, grounded on S3Filesystem in cloud/fs/s3.go: same
// svc/bucket-name shape, same PutObjectRequest-and-Send upload path.
type S3Archive struct {
	svc    *s3.S3
	bucket string
}

// NewS3Archive opens an archive against the "physgo-<stage>-snapshots"
// bucket, mirroring NewS3Filesystem's "mk48-<stage>-static" naming.
func NewS3Archive(sess *session.Session, stage string) (*S3Archive, error) {
	return &S3Archive{
		svc:    s3.New(sess),
		bucket: "physgo-" + stage + "-snapshots",
	}, nil
}

// UploadSnapshot stores one tick's (or hull build's) snapshot JSON
// under "<run>/<tick>.json", uncached since every tick is a distinct
// immutable object.
func (a *S3Archive) UploadSnapshot(run string, tick int64, data []byte) error {
	key := fmt.Sprintf("%s/%d.json", run, tick)
	req, _ := a.svc.PutObjectRequest(&s3.PutObjectInput{
		Bucket:       aws.String(a.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		CacheControl: aws.String("no-transform, private, max-age=0"),
		ContentType:  aws.String("application/json"),
	})
	return req.Send()
}
