// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import "github.com/SunGuangdong/physgo/cmd/physdemo/cmd"

func main() {
	cmd.Execute()
}
