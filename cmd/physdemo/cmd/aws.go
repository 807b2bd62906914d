// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package cmd

import (
	"github.com/aws/aws-sdk-go/aws/session"
)

// newAWSSession opens a default AWS session, picking up credentials and
// region the usual SDK ways (environment, shared config, instance
// role). cloud/db/dynamodb.go and cloud/fs/s3.go both take a
// *session.Session as a constructor argument rather than opening their
// own, so physdemo is the one place in this module that calls
// session.NewSessionWithOptions.
func newAWSSession() (*session.Session, error) {
	return session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
}
