/*
 * Copyright (C) 2025 DXTR Asia Pte. Ltd.
 * SPDX-License-Identifier: GPL-3.0-or-later
 */

package utils

import (
	"os"
)

func LogError(err error) {
	os.Stderr.WriteString(err.Error() + "\n")
}
